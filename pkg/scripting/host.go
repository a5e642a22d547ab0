// Package scripting implements the Script Host (C6): an expression-
// language evaluator bound to expr-lang/expr, the dependency the teacher's
// pkg/stateful/executor.go already uses for its CustomOperation step and
// response expressions. Matchers, per-response matchers and processors all
// go through Host.Eval; the difference between them is only which env
// reqctx builds and what the caller does with the returned value.
package scripting

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rustrum/apate/pkg/helpers"
)

// Host evaluates Apate's scripts: expr-lang expressions with ctx/args and a
// handful of host functions injected into the environment. A Host is safe
// for concurrent use; its program cache is guarded by a mutex, mirroring
// OperationExecutor's compile cache.
type Host struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// New returns a Host with an empty compiled-program cache.
func New() *Host {
	return &Host{cache: make(map[string]*vm.Program)}
}

// Error is returned for any script failure: parse, compile, runtime panic
// recovered by expr, or type mismatch. It implements the ScriptError kind
// spec.md §7 names.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script error: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Eval compiles (with caching) and runs source against env, which should
// be built by reqctx.RequestEnv/ResponseEnv plus an "args" entry and the
// shared helper functions. Compile/runtime failures return *Error; callers
// at the matcher level treat any error as non-truthy, callers at the
// processor/output level surface it as HTTP 500.
func (h *Host) Eval(source string, env map[string]any) (any, error) {
	program, err := h.compile(source)
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}

	result, err := expr.Run(program, withHelpers(env))
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}
	return result, nil
}

func (h *Host) compile(source string) (*vm.Program, error) {
	h.mu.RLock()
	if p, ok := h.cache[source]; ok {
		h.mu.RUnlock()
		return p, nil
	}
	h.mu.RUnlock()

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if existing, ok := h.cache[source]; ok {
		h.mu.Unlock()
		return existing, nil
	}
	h.cache[source] = program
	h.mu.Unlock()
	return program, nil
}

// withHelpers returns env extended with the random/uuid/JSON helper
// functions, without mutating the caller's map. The storage helpers are
// not added here; they are exposed on ctx (see reqctx.RequestEnv).
func withHelpers(env map[string]any) map[string]any {
	out := make(map[string]any, len(env)+6)
	for k, v := range env {
		out[k] = v
	}
	out["random_num"] = helpers.RandomNum
	out["random_hex"] = helpers.RandomHex
	out["uuid_v4"] = helpers.UUIDv4
	out["to_json_blob"] = ToJSONBlob
	out["from_json_blob"] = FromJSONBlob
	return out
}

// Truthy implements spec.md §4.3's truthiness rule: explicit boolean true
// is truthy; everything else (false, zero, missing/nil, wrong type) is
// falsy.
func Truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
