package matching

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rustrum/apate/pkg/apierr"
	"github.com/rustrum/apate/pkg/logging"
	"github.com/rustrum/apate/pkg/reqctx"
	"github.com/rustrum/apate/pkg/scripting"
	"github.com/rustrum/apate/pkg/spec"
)

// EvalMatcher evaluates one MatcherExpr — a built-in predicate or a custom
// script — against the current request. Evaluation errors (script
// failures) are returned to the caller as an *apierr.Error with
// KindMatcher so the caller can log it; per spec.md §4.2 step 2d and §7
// MatcherError, the error must still be treated as a non-match, never
// propagated as a response error.
func EvalMatcher(m spec.MatcherExpr, ctx *reqctx.RequestContext, host *scripting.Host, args map[string]any, headers http.Header, query url.Values) (bool, error) {
	switch m.Kind {
	case spec.MatcherMethod:
		return MatchMethod([]string{m.Value}, ctx.Method()), nil
	case spec.MatcherHeader:
		return MatchRequiredHeaders(map[string]string{m.Name: m.Value}, headers), nil
	case spec.MatcherQueryArg:
		return MatchQueryArg(m.Name, m.Value, query), nil
	case spec.MatcherPathArg:
		got, ok := ctx.LoadPathArgs()[m.Name]
		return ok && got == m.Value, nil
	case spec.MatcherJSON:
		return MatchJSONPath(m.Path, m.Eq, ctx.LoadBody()), nil
	case spec.MatcherScript:
		env := map[string]any{
			"ctx":  reqctx.RequestEnv(ctx),
			"args": args,
		}
		result, err := host.Eval(m.Source, env)
		if err != nil {
			return false, apierr.Wrap(apierr.KindMatcher, "evaluate matcher script", err)
		}
		return scripting.Truthy(result), nil
	default:
		return false, nil
	}
}

// EvalAll evaluates every matcher in order, short-circuiting (logical AND)
// on the first failure or error — both collapse to "does not match" at the
// Dispatcher level (spec.md §4.3). Evaluation errors are logged, not
// swallowed, per spec.md §7's "MatcherError — logged and treated as
// non-match". log may be nil, in which case a no-op logger is used.
func EvalAll(matchers []spec.MatcherExpr, ctx *reqctx.RequestContext, host *scripting.Host, args map[string]any, headers http.Header, query url.Values, log *slog.Logger) bool {
	if log == nil {
		log = logging.Nop()
	}
	for _, m := range matchers {
		ok, err := EvalMatcher(m, ctx, host, args, headers, query)
		if err != nil {
			log.Warn("matcher evaluation failed, treating as non-match", "kind", m.Kind, "error", err)
		}
		if !ok {
			return false
		}
	}
	return true
}
