// Package response implements the Response Builder (C7): decodes or
// renders a chosen Response's body, then runs its post-processor pipeline,
// producing the final status code and bytes the Dispatcher writes out.
package response

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/rustrum/apate/pkg/apierr"
	"github.com/rustrum/apate/pkg/reqctx"
	"github.com/rustrum/apate/pkg/scripting"
	"github.com/rustrum/apate/pkg/spec"
	"github.com/rustrum/apate/pkg/template"
)

// Builder materializes a spec.Response's body and drives its processor
// pipeline. A Builder is stateless beyond its two collaborators and is
// safe for concurrent use.
type Builder struct {
	Templates *template.Engine
	Scripts   *scripting.Host
}

// New returns a Builder wired to fresh Template and Script collaborators.
func New() *Builder {
	return &Builder{
		Templates: template.New(),
		Scripts:   scripting.New(),
	}
}

// Result is the final, fully-processed HTTP response.
type Result struct {
	Code int
	Body []byte
}

// Build runs spec.md §4.7's five steps: seed the status code, decode/render
// the declared output (which for jinja output can itself read or force-set
// that same code), run processors in order, and return the final (code,
// body) pair. ctx is the RequestContext for the matched Deceit; args is
// that Deceit's args bag.
func (b *Builder) Build(r spec.Response, ctx *reqctx.RequestContext, args map[string]any) (Result, error) {
	code := r.EffectiveCode()

	body, err := b.decode(r, ctx, args, &code)
	if err != nil {
		return Result{}, err
	}

	for _, proc := range r.Processors {
		code, body, err = b.runProcessor(proc, ctx, args, code, body)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{Code: code, Body: body}, nil
}

// decode implements step 2: turn R.Output into bytes per R.Type. code is
// the mutable status cell seeded in step 3 — for OutputJinja it is handed
// into the template environment so ctx.response_code can be read or
// force-set from within the template itself (spec.md §4.6 line 124).
func (b *Builder) decode(r spec.Response, ctx *reqctx.RequestContext, args map[string]any, code *int) ([]byte, error) {
	switch r.EffectiveType() {
	case spec.OutputString:
		return []byte(r.Output), nil

	case spec.OutputHex:
		return decodeHex(r.Output)

	case spec.OutputBase64:
		return decodeBase64(r.Output)

	case spec.OutputJinja:
		env := reqctx.TemplateEnv(ctx, code)
		rendered, err := b.Templates.Render(r.Output, env, args)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindTemplate, "render response output", err)
		}
		return []byte(rendered), nil

	case spec.OutputScript:
		env := map[string]any{
			"ctx":  reqctx.RequestEnv(ctx),
			"args": args,
		}
		result, err := b.Scripts.Eval(r.Output, env)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindScript, "evaluate response output", err)
		}
		return scriptResultBytes(result)

	default:
		return nil, apierr.New(apierr.KindBodyDecode, "unknown output type "+string(r.Type))
	}
}

// runProcessor implements step 4: invoke one processor script against a
// ResponseContext wrapping the current body/code, then fold back its
// (possibly mutated) body and status.
func (b *Builder) runProcessor(source string, ctx *reqctx.RequestContext, args map[string]any, code int, body []byte) (int, []byte, error) {
	rc := reqctx.NewResponse(ctx, body)
	rc.ResponseCode = 0 // sentinel: inherit code unless the script sets it

	env := map[string]any{
		"ctx":  reqctx.ResponseEnv(rc),
		"args": args,
	}

	result, err := b.Scripts.Eval(source, env)
	if err != nil {
		return 0, nil, apierr.Wrap(apierr.KindProcessor, "run processor", err)
	}

	newCode := code
	newBody := rc.Body

	switch v := result.(type) {
	case map[string]any:
		if c, ok := v["code"]; ok {
			if n, ok := toInt(c); ok && n != 0 {
				newCode = n
			}
		}
		if bodyVal, ok := v["body"]; ok {
			decoded, err := scriptResultBytes(bodyVal)
			if err != nil {
				return 0, nil, err
			}
			newBody = decoded
		}
	case nil:
		// Processor evaluated to nothing; body/code from ctx mutation (if
		// any helper wrote through set_body/set_response_code) still apply.
	default:
		decoded, err := scriptResultBytes(result)
		if err == nil {
			newBody = decoded
		}
	}

	if rc.ResponseCode != 0 {
		newCode = rc.ResponseCode
	}

	return newCode, newBody, nil
}

func scriptResultBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, apierr.New(apierr.KindScript, "script result must be bytes or string")
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

// decodeHex decodes hex output, tolerating a leading 0x/0X prefix and
// interior whitespace (original_source/src/output.rs's behavior,
// supplementing spec.md §4.7's "whitespace tolerated").
func decodeHex(s string) ([]byte, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "0x")
	cleaned = strings.TrimPrefix(cleaned, "0X")
	cleaned = stripWhitespace(cleaned)
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindBodyDecode, "invalid hex output", err)
	}
	return data, nil
}

func decodeBase64(s string) ([]byte, error) {
	cleaned := stripWhitespace(strings.TrimSpace(s))
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindBodyDecode, "invalid base64 output", err)
	}
	return data, nil
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
