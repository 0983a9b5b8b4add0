package wasm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/taugate/executor/wasm"
)

func TestNew_UnknownActionErrors(t *testing.T) {
	ctx := context.Background()
	resolver := func(action string) ([]byte, error) {
		return nil, context.DeadlineExceeded
	}

	exec, err := wasm.New(ctx, wasm.Config{}, resolver)
	require.NoError(t, err)
	defer exec.Close(ctx)

	_, err = exec.Execute(ctx, "unknown.action", map[string]interface{}{"x": 1})
	require.Error(t, err)
}
