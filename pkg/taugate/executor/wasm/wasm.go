// Package wasm implements a sandboxed ToolExecutor that runs
// committed actions as WebAssembly modules via wazero, so a mandate's
// delegate can execute third-party tool code without host filesystem,
// network, or environment access leaking into the kernel process.
package wasm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Config bounds what a sandboxed module may consume.
type Config struct {
	MemoryLimitBytes int64
	CPUTimeLimit     time.Duration
}

// ModuleResolver maps an action name to the compiled WASM bytes that
// implement it. Callers typically back this with a content-addressed
// store keyed by a hash recorded in the mandate's constraints.
type ModuleResolver func(action string) ([]byte, error)

// Executor is a deny-by-default WASM sandbox: no filesystem mounts, no
// network, no ambient environment variables. A module receives its
// JSON-encoded input on stdin and must write its JSON output to stdout.
type Executor struct {
	runtime  wazero.Runtime
	modCfg   wazero.ModuleConfig
	limits   Config
	resolver ModuleResolver
}

// New creates a sandboxed executor. The returned Executor owns the
// wazero runtime and must be closed when no longer needed.
func New(ctx context.Context, cfg Config, resolver ModuleResolver) (*Executor, error) {
	// Close modules when their context is done, so CPUTimeLimit
	// interrupts a module that is still running.
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.MemoryLimitBytes > 0 {
		pages := uint32(cfg.MemoryLimitBytes / (64 * 1024))
		if pages == 0 {
			pages = 1
		}
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(pages)
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiate wasi: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("taugate-sandbox").
		WithStartFunctions("_start")
	// Deny-by-default: no WithFSConfig, no WithSysNanotime, no WithRandSource.

	return &Executor{runtime: r, modCfg: modCfg, limits: cfg, resolver: resolver}, nil
}

// Execute implements executor.ToolExecutor by running action's WASM
// module with input marshaled to JSON on stdin.
func (e *Executor) Execute(ctx context.Context, action string, input map[string]interface{}) (interface{}, error) {
	if e.limits.CPUTimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.limits.CPUTimeLimit)
		defer cancel()
	}

	wasmBytes, err := e.resolver(action)
	if err != nil {
		return nil, fmt.Errorf("wasm: resolve action %q: %w", action, err)
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("wasm: marshal input: %w", err)
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("wasm: compile module for %q: %w", action, err)
	}
	defer func() { _ = compiled.Close(ctx) }()

	var stdout, stderr bytes.Buffer
	modCfg := e.modCfg.
		WithStdin(bytes.NewReader(inputJSON)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := e.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wasm: action %q timed out after %v", action, e.limits.CPUTimeLimit)
		}
		return nil, fmt.Errorf("wasm: instantiate module for %q: %w", action, err)
	}
	defer func() { _ = mod.Close(ctx) }()

	if stderr.Len() > 0 {
		return nil, fmt.Errorf("wasm: action %q wrote to stderr: %s", action, stderr.String())
	}

	var out interface{}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("wasm: action %q produced non-JSON output: %w", action, err)
	}
	return out, nil
}

// Close shuts down the wazero runtime, freeing all resources.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
