package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rustrum/apate/pkg/helpers"
)

// evalPiped evaluates a `{{ expr }}` body that may chain Jinja-style pipe
// filters: `expr | upper | default("x")`. Each stage is translated into a
// nested function call — `upper(expr)`, then `default(upper(expr), "x")`
// — and the whole thing runs as one expr-lang expression.
func evalPiped(source string, env map[string]any) (any, error) {
	stages := splitPipes(source)
	rewritten := stages[0]
	for _, stage := range stages[1:] {
		name, args := splitFilterCall(stage)
		if args == "" {
			rewritten = fmt.Sprintf("%s(%s)", name, rewritten)
		} else {
			rewritten = fmt.Sprintf("%s(%s, %s)", name, rewritten, args)
		}
	}
	return evalExpr(rewritten, env)
}

// splitPipes splits source on top-level `|` characters, ignoring `|`
// inside quotes or brackets/parens so filter arguments containing literal
// pipes (rare, but cheap to get right) don't break the split.
func splitPipes(source string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			cur.WriteByte(c)
		case c == '(' || c == '[' || c == '{':
			depth++
			cur.WriteByte(c)
		case c == ')' || c == ']' || c == '}':
			depth--
			cur.WriteByte(c)
		case c == '|' && depth == 0:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, strings.TrimSpace(cur.String()))
	return parts
}

// splitFilterCall splits a filter stage like `default("x")` into its name
// and raw argument list (empty for a bare filter like `upper`).
func splitFilterCall(stage string) (name string, args string) {
	stage = strings.TrimSpace(stage)
	open := strings.Index(stage, "(")
	if open < 0 || !strings.HasSuffix(stage, ")") {
		return stage, ""
	}
	return stage[:open], stage[open+1 : len(stage)-1]
}

// withFilters registers the minimum Jinja filter set the example specs
// exercise: upper, lower, default, length, trim, join, int.
func withFilters(env map[string]any) map[string]any {
	env["upper"] = strings.ToUpper
	env["lower"] = strings.ToLower
	env["trim"] = strings.TrimSpace
	env["default"] = func(v any, fallback any) any {
		if v == nil {
			return fallback
		}
		if s, ok := v.(string); ok && s == "" {
			return fallback
		}
		return v
	}
	env["length"] = func(v any) int {
		switch t := v.(type) {
		case string:
			return len(t)
		case []any:
			return len(t)
		case map[string]any:
			return len(t)
		case map[string]string:
			return len(t)
		default:
			return 0
		}
	}
	env["join"] = func(v any, sep string) string {
		items, err := toSlice(v)
		if err != nil {
			return ""
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = formatValue(it)
		}
		return strings.Join(parts, sep)
	}
	env["int"] = func(v any) int {
		switch t := v.(type) {
		case int:
			return t
		case int64:
			return int(t)
		case float64:
			// random_num()/counter arithmetic can widen to float64 inside
			// expr-lang; clamp rather than let a huge or NaN-adjacent value
			// wrap silently on the int64->int narrowing.
			return int(helpers.ClampInt64(t))
		case string:
			n, _ := strconv.Atoi(t)
			return n
		default:
			return 0
		}
	}
	return env
}
