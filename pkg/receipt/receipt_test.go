package receipt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/receipt"
	"github.com/taugate/kernel/pkg/taugate/types"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	ks := keystore.New()
	actor := types.ActorId("adapter:checkout")
	_, err := ks.EnsureKey(actor)
	require.NoError(t, err)

	m := receipt.New(ks)
	rc, err := m.Issue(receipt.IssueParams{
		MandateID:   "mandate_1",
		Actor:       actor,
		Action:      "payments:charge",
		RequestHash: "mirror_abc",
		ResponseHash: "deadbeef",
		MirrorRef:   "mirror_abc",
	})
	require.NoError(t, err)
	require.True(t, m.Verify(rc))

	rc.Action = "payments:refund"
	require.False(t, m.Verify(rc))
}

func TestChain_LinksAndVerifies(t *testing.T) {
	ks := keystore.New()
	actor := types.ActorId("adapter:checkout")
	_, err := ks.EnsureKey(actor)
	require.NoError(t, err)

	m := receipt.New(ks)
	chain := receipt.NewChain()

	for i := 0; i < 3; i++ {
		rc, err := m.Issue(receipt.IssueParams{
			MandateID: "mandate_1",
			Actor:     actor,
			Action:    "payments:charge",
			MirrorRef: "mirror_x",
		})
		require.NoError(t, err)
		_, err = chain.Add(rc)
		require.NoError(t, err)
	}

	require.NoError(t, chain.Verify())
	require.Len(t, chain.Links(), 3)

	proof, err := chain.GetChainProof()
	require.NoError(t, err)
	require.NotEmpty(t, proof)
}

func TestChain_GenesisLinkSelfReferences(t *testing.T) {
	ks := keystore.New()
	actor := types.ActorId("adapter:checkout")
	_, _ = ks.EnsureKey(actor)
	m := receipt.New(ks)
	chain := receipt.NewChain()

	rc, err := m.Issue(receipt.IssueParams{Actor: actor, MirrorRef: "mirror_1"})
	require.NoError(t, err)

	link, err := chain.Add(rc)
	require.NoError(t, err)
	require.Equal(t, link.ReceiptHash, link.PreviousHash)
}
