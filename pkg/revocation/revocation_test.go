package revocation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/revocation"
)

func TestAppend_Chains(t *testing.T) {
	chain := revocation.New()

	l1, err := chain.Append("mandate_1", "user requested")
	require.NoError(t, err)

	l2, err := chain.Append("mandate_2", "budget exceeded")
	require.NoError(t, err)

	require.NotEqual(t, l1.Hash, l2.Hash)
	require.Len(t, chain.Links(), 2)
}

func TestFromLinks_RoundTrip(t *testing.T) {
	chain := revocation.New()
	_, err := chain.Append("mandate_1", "reason")
	require.NoError(t, err)

	rebuilt := revocation.FromLinks(chain.Links())
	require.Equal(t, chain.Links(), rebuilt.Links())
}
