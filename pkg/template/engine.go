// Package template implements the Template Renderer (C5): a
// Jinja-compatible-grammar evaluator (`{{ expr }}`, `{% tag %}`, pipe
// filters) layered over the same expr-lang evaluator the Script Host (C6)
// uses, so `ctx`/`args` and the random/uuid helpers behave identically in
// both layers (spec.md §9: "Shared KV value domain... canonicalize to a
// single internal value representation").
//
// Grounded on the teacher's pkg/template/engine.go regex-driven
// Process(template, ctx) shape, generalized from its ad hoc
// space/parenthesis grammar to the block-tag parser Jinja's observable
// contract requires.
package template

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/rustrum/apate/pkg/helpers"
)

// Engine renders Jinja-subset templates. An Engine is stateless and safe
// for concurrent use.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// Error reports a template parse or evaluation failure; the Response
// Builder converts it into the TemplateError kind (spec.md §7).
type Error struct {
	Err error
}

func (e *Error) Error() string  { return fmt.Sprintf("template error: %v", e.Err) }
func (e *Error) Unwrap() error  { return e.Err }

// Render evaluates source against ctx (the snake_case env built by
// reqctx.RequestEnv, exposed to templates as the `ctx` global) and args
// (the Deceit's args bag, exposed as `args`). Output with no
// interpolations round-trips byte-for-byte (spec.md §8).
func (e *Engine) Render(source string, ctx map[string]any, args map[string]any) (string, error) {
	nodes, err := parse(source)
	if err != nil {
		return "", &Error{Err: err}
	}

	env := baseEnv(ctx, args)
	var out strings.Builder
	if err := renderNodes(nodes, env, &out); err != nil {
		return "", &Error{Err: err}
	}
	return out.String(), nil
}

func baseEnv(ctx map[string]any, args map[string]any) map[string]any {
	return map[string]any{
		"ctx":  ctx,
		"args": args,
	}
}

// evalExpr compiles and runs a single expr-lang expression against env,
// tolerating references to undefined names the way Jinja silently renders
// undefined variables as empty.
func evalExpr(source string, env map[string]any) (any, error) {
	full := make(map[string]any, len(env)+4)
	for k, v := range env {
		full[k] = v
	}
	full["random_num"] = helpers.RandomNum
	full["random_hex"] = helpers.RandomHex
	full["uuid_v4"] = helpers.UUIDv4
	full = withFilters(full)

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	return expr.Run(program, full)
}

// truthy implements Jinja's usual `{% if %}` semantics: nil, false, zero
// numbers, empty strings and empty collections are falsy; everything else
// is truthy. This differs deliberately from the Script Host's stricter
// "only explicit true is truthy" matcher rule (spec.md §4.3), which is
// about gating a route, not about rendering a conditional block.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case map[string]string:
		return len(t) > 0
	default:
		return true
	}
}
