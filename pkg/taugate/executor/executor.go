// Package executor defines the generic tool-execution boundary the
// τ-Gate kernel calls through on commit. Concrete executors (HTTP
// calls, payment providers, sandboxed WASM modules) live outside this
// kernel; it only depends on the interface.
package executor

import "context"

// ToolExecutor performs the actual side-effecting action a mandate
// authorizes. It is injected into the kernel — the kernel never knows
// how a tool call actually reaches the outside world.
type ToolExecutor interface {
	// Execute runs action with the given input and returns the raw
	// output to be hashed into the receipt's response_hash.
	Execute(ctx context.Context, action string, input map[string]interface{}) (interface{}, error)
}

// Func adapts a plain function to the ToolExecutor interface.
type Func func(ctx context.Context, action string, input map[string]interface{}) (interface{}, error)

func (f Func) Execute(ctx context.Context, action string, input map[string]interface{}) (interface{}, error) {
	return f(ctx, action, input)
}
