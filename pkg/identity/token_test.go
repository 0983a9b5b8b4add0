package identity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/identity"
	"github.com/taugate/kernel/pkg/taugate/types"
)

func TestGenerateValidateToken_RoundTrip(t *testing.T) {
	ks, err := identity.NewInMemoryKeySet()
	require.NoError(t, err)

	tm := identity.NewTokenManager(ks)
	agent := &identity.AgentPrincipal{
		Agent:       types.ActorId("agent:bot-1"),
		DelegatorID: "user:alice",
		Scopes:      []string{"payments:*"},
	}

	token, err := tm.GenerateToken(agent, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "agent:bot-1", claims.Subject)
	require.Equal(t, "user:alice", claims.DelegatorID)
}

func TestValidateToken_RejectsAfterRotationEviction(t *testing.T) {
	ks, err := identity.NewInMemoryKeySet()
	require.NoError(t, err)
	tm := identity.NewTokenManager(ks)

	user := &identity.UserPrincipal{User: types.ActorId("user:bob")}
	token, err := tm.GenerateToken(user, time.Hour)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	require.NoError(t, err)

	// The key set holds at most 10 keys; ten rotations evict the key
	// that signed token.
	for i := 0; i < 10; i++ {
		require.NoError(t, ks.Rotate())
	}
	_, err = tm.ValidateToken(token)
	require.Error(t, err)
}
