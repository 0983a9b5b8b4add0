package mirror_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/mirror"
	"github.com/taugate/kernel/pkg/taugate/types"
)

func TestCaptureRequestResponse(t *testing.T) {
	store := mirror.New()

	entry, err := store.CaptureRequest(types.ActorId("agent:bot"), "refund order 42", map[string]interface{}{"model": "x"})
	require.NoError(t, err)
	require.NotEmpty(t, entry.RequestHash)
	require.Empty(t, entry.ResponseHash)

	updated, err := store.CaptureResponse(entry.ID, map[string]interface{}{"status": "ok"}, map[string]interface{}{"latency_ms": float64(12)})
	require.NoError(t, err)
	require.NotEmpty(t, updated.ResponseHash)
	require.Equal(t, "x", updated.ProviderMetadata["model"])
	require.Equal(t, float64(12), updated.ProviderMetadata["latency_ms"])
}

func TestCaptureResponse_UnknownEntry(t *testing.T) {
	store := mirror.New()
	_, err := store.CaptureResponse("mirror_missing", nil, nil)
	require.Error(t, err)
}
