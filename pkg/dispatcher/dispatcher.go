// Package dispatcher implements the Dispatcher (C9): the per-request
// orchestration that turns an inbound HTTP request into a snapshot lookup,
// a matcher evaluation pass, a Response Builder invocation and the bytes
// written back to the client.
package dispatcher

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rustrum/apate/pkg/apierr"
	"github.com/rustrum/apate/pkg/logging"
	"github.com/rustrum/apate/pkg/matching"
	"github.com/rustrum/apate/pkg/registry"
	"github.com/rustrum/apate/pkg/reqctx"
	"github.com/rustrum/apate/pkg/response"
	"github.com/rustrum/apate/pkg/scripting"
	"github.com/rustrum/apate/pkg/spec"
	"github.com/rustrum/apate/pkg/store"
)

// MaxRequestBodySize bounds the bytes the Dispatcher reads per request,
// the same defense-in-depth the teacher's engine.Handler applies before
// matching or templating ever sees a body.
const MaxRequestBodySize = 10 << 20 // 10MB

// Dispatcher wires the Registry, shared Store, Script Host and Response
// Builder together into one http.Handler.
type Dispatcher struct {
	Registry *registry.Registry
	Store    *store.Store
	Scripts  *scripting.Host
	Builder  *response.Builder
	Log      *slog.Logger
}

// New builds a Dispatcher. log may be nil, in which case logging.Nop()'s
// no-op logger is used.
func New(reg *registry.Registry, sharedStore *store.Store, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{
		Registry: reg,
		Store:    sharedStore,
		Scripts:  scripting.New(),
		Builder:  response.New(),
		Log:      log,
	}
}

// ServeHTTP implements spec.md §4.2's six-step algorithm: snapshot, match,
// build, emit; 404 on no-Deceit-matched or no-Response-matched.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := reqctx.ReadAllLimited(r.Body, MaxRequestBodySize)
	if err != nil {
		d.Log.Warn("failed to read request body", "path", r.URL.Path, "error", err)
		writeError(w, apierr.New(apierr.KindBodyDecode, "failed to read request body"))
		return
	}

	snapshot := d.Registry.Snapshot()

	deceit, pathArgs, ok := d.selectDeceit(snapshot, r, body)
	if !ok {
		d.Log.Debug("no route matched", "method", r.Method, "path", r.URL.Path)
		writeError(w, apierr.New(apierr.KindNoRouteMatched, "no route matched"))
		return
	}

	ctx := reqctx.New(r, body, pathArgs, d.Store)

	resp, ok := d.selectResponse(deceit, ctx, r.Header, r.URL.Query())
	if !ok {
		d.Log.Debug("no response variant matched", "method", r.Method, "path", r.URL.Path, "uri", deceit.URIs[0])
		writeError(w, apierr.New(apierr.KindNoResponse, "no response variant matched"))
		return
	}

	result, err := d.Builder.Build(resp, ctx, deceit.Args)
	if err != nil {
		d.Log.Error("response build failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, err)
		return
	}

	d.Log.Info("request dispatched",
		"method", r.Method, "path", r.URL.Path, "uri", deceit.URIs[0], "status", result.Code)

	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(result.Code)
	if len(result.Body) > 0 {
		_, _ = w.Write(result.Body)
	}
}

// selectDeceit runs step 2 of spec.md §4.2: the first Deceit in the active
// Spec whose URI, method, required headers and matchers all pass.
func (d *Dispatcher) selectDeceit(s spec.Spec, r *http.Request, body []byte) (spec.Deceit, map[string]string, bool) {
	for _, deceit := range s.Deceits {
		pathArgs, matched := matching.MatchURIs(deceit.URIs, r.URL.Path)
		if !matched {
			continue
		}
		if !matching.MatchMethod(deceit.Methods, r.Method) {
			continue
		}
		if !matching.MatchRequiredHeaders(deceit.RequiredHeaders, r.Header) {
			continue
		}

		ctx := reqctx.New(r, body, pathArgs, d.Store)
		if !matching.EvalAll(deceit.Matchers, ctx, d.Scripts, deceit.Args, r.Header, r.URL.Query(), d.Log) {
			continue
		}
		return deceit, pathArgs, true
	}
	return spec.Deceit{}, nil, false
}

// selectResponse runs step 3: the first Response in deceit.Responses whose
// own per-response matchers all pass.
func (d *Dispatcher) selectResponse(deceit spec.Deceit, ctx *reqctx.RequestContext, headers http.Header, query url.Values) (spec.Response, bool) {
	for _, resp := range deceit.Responses {
		if len(resp.Matchers) == 0 {
			return resp, true
		}
		if matching.EvalAll(resp.Matchers, ctx, d.Scripts, deceit.Args, headers, query, d.Log) {
			return resp, true
		}
	}
	return spec.Response{}, false
}

// writeError maps an error to spec.md §7's status-code table. Routing
// failures (NoRouteMatched, NoResponseMatched) get an empty body per §4.2
// steps 5-6; every other kind gets a short diagnostic body.
func writeError(w http.ResponseWriter, err error) {
	kind := apierr.Kind("")
	message := err.Error()

	if ae, ok := err.(*apierr.Error); ok {
		kind = ae.Kind
		message = ae.Message
	}

	status := apierr.StatusCode(kind)
	switch kind {
	case apierr.KindNoRouteMatched, apierr.KindNoResponse:
		w.WriteHeader(status)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(message))
	}
}
