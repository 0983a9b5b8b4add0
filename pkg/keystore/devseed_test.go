package keystore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

func TestSeedFixture_Deterministic(t *testing.T) {
	actors := []types.ActorId{"agent:bot-1", "user:alice"}

	ks1 := keystore.New()
	require.NoError(t, keystore.SeedFixture(ks1, []byte("fixed-test-seed"), actors))

	ks2 := keystore.New()
	require.NoError(t, keystore.SeedFixture(ks2, []byte("fixed-test-seed"), actors))

	for _, a := range actors {
		p1, ok1 := ks1.PublicKey(a)
		p2, ok2 := ks2.PublicKey(a)
		require.True(t, ok1)
		require.True(t, ok2)
		require.Equal(t, p1, p2)
	}
}

func TestSeedFixture_DistinctActorsDistinctKeys(t *testing.T) {
	ks := keystore.New()
	a := types.ActorId("agent:bot-1")
	b := types.ActorId("agent:bot-2")
	require.NoError(t, keystore.SeedFixture(ks, []byte("seed"), []types.ActorId{a, b}))

	pa, _ := ks.PublicKey(a)
	pb, _ := ks.PublicKey(b)
	require.NotEqual(t, pa, pb)
}

func TestSeedFixture_SignAndVerify(t *testing.T) {
	ks := keystore.New()
	actor := types.ActorId("agent:bot-1")
	require.NoError(t, keystore.SeedFixture(ks, []byte("seed"), []types.ActorId{actor}))

	digest := []byte("hello world")
	sig, err := ks.Sign(actor, digest)
	require.NoError(t, err)
	require.True(t, ks.Verify(actor, digest, sig))
}
