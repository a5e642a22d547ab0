package reqctx

import "github.com/rustrum/apate/pkg/store"

// Env projects a RequestContext (or an embedding ResponseContext) into the
// snake_case method surface spec.md §4.6 documents for scripts and
// templates: ctx.load_headers(), ctx.inc_counter(key), and so on. Both the
// Script Host and the Template Renderer build their evaluation
// environments from the same Env so the two layers can never drift.
type Env map[string]any

// RequestEnv builds the env exposed for matcher/response evaluation: no
// mutable body or status code.
func RequestEnv(c *RequestContext) Env {
	return Env{
		"method":           c.Method(),
		"path":             c.Path(),
		"load_headers":     c.LoadHeaders,
		"load_query_args":  c.LoadQueryArgs,
		"load_path_args":   c.LoadPathArgs,
		"load_body":        c.LoadBody,
		"load_body_string": c.LoadBodyString,
		"load_body_json": func() any {
			v, err := c.LoadBodyJSON()
			if err != nil {
				return nil
			}
			return v
		},
		"inc_counter": c.IncCounter,
		"storage_read": func(key string) any {
			if v := c.StorageRead(key); !store.IsMissing(v) {
				return v
			}
			return nil
		},
		"storage_write": func(key string, value any) any {
			if prev := c.StorageWrite(key, value); !store.IsMissing(prev) {
				return prev
			}
			return nil
		},
	}
}

// TemplateEnv builds the env exposed to the main body jinja render: the
// same read-only request surface as RequestEnv, plus a writable
// response_code backed by code. spec.md §4.6 line 124 makes this a
// requirement distinct from the post-processor mutation ResponseEnv
// grants: a template can force the status code the same way a processor
// can, sharing one mutable cell with the rest of the Response Builder's
// pipeline (grounded in original_source/src/output.rs's
// prepare_jinja_output, which wires a force_response_code function into
// the same environment used for the body render, backed by
// DeceitResponseContext.response_code).
func TemplateEnv(c *RequestContext, code *int) Env {
	env := RequestEnv(c)
	env["get_response_code"] = func() int { return *code }
	env["set_response_code"] = func(v int) { *code = v }
	return env
}

// ResponseEnv builds the env exposed to a post-processor script: the same
// surface as RequestEnv, plus the mutable body/response_code a processor
// may rewrite. They are exposed only as the get_body/set_body and
// get_response_code/set_response_code functions, which scripts call
// directly (ctx.set_body(...)); there are no assignable "body" or
// "response_code" properties.
func ResponseEnv(rc *ResponseContext) Env {
	env := RequestEnv(rc.RequestContext)
	env["get_body"] = func() []byte { return rc.Body }
	env["set_body"] = func(b []byte) { rc.Body = b }
	env["get_response_code"] = func() int { return rc.ResponseCode }
	env["set_response_code"] = func(code int) { rc.ResponseCode = code }
	return env
}
