package lock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/lock"
	"github.com/taugate/kernel/pkg/taugate/types"
)

func TestNoopLock_AlwaysSucceeds(t *testing.T) {
	var l lock.Noop
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)
	unlock()
}

func TestLocalLimiter_BurstThenThrottles(t *testing.T) {
	limiter := lock.NewLocalLimiter(1, 2)
	actor := types.ActorId("agent:bot-1")

	require.True(t, limiter.Allow(actor))
	require.True(t, limiter.Allow(actor))
	require.False(t, limiter.Allow(actor))
}

func TestLocalLimiter_PerActorIndependent(t *testing.T) {
	limiter := lock.NewLocalLimiter(1, 1)
	a := types.ActorId("agent:a")
	b := types.ActorId("agent:b")

	require.True(t, limiter.Allow(a))
	require.False(t, limiter.Allow(a))
	require.True(t, limiter.Allow(b))
}
