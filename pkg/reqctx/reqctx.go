// Package reqctx implements the Request & Response Contexts (C3): the
// ephemeral, per-request objects exposed to matchers, templates and
// scripts. Every loader is lazy and idempotent within one request — the
// first call does the work, later calls return the cached result.
package reqctx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rustrum/apate/pkg/store"
)

// RequestContext is the lazy view over one inbound HTTP request that
// matchers, templates and scripts all read from. A RequestContext is built
// once per request and discarded when the response is emitted; it is
// never shared across requests.
type RequestContext struct {
	method string
	path   string

	rawHeaders http.Header
	rawQuery   url.Values
	rawBody    []byte
	pathArgs   map[string]string

	store *store.Store

	headers        map[string]string
	headersLoaded  bool
	queryArgs      map[string]string
	queryLoaded    bool
	bodyString     string
	bodyStrLoaded  bool
	bodyJSON       any
	bodyJSONErr    error
	bodyJSONLoaded bool
}

// New builds a RequestContext from an inbound *http.Request. body is the
// already-drained request body (the Dispatcher reads it once up front so
// every downstream consumer shares the same bytes). pathArgs carries the
// captures produced by the URI pattern that matched the request.
func New(r *http.Request, body []byte, pathArgs map[string]string, sharedStore *store.Store) *RequestContext {
	if pathArgs == nil {
		pathArgs = map[string]string{}
	}
	return &RequestContext{
		method:     r.Method,
		path:       r.URL.Path,
		rawHeaders: r.Header,
		rawQuery:   r.URL.Query(),
		rawBody:    body,
		pathArgs:   pathArgs,
		store:      sharedStore,
	}
}

// Method returns the HTTP method of the request.
func (c *RequestContext) Method() string { return c.method }

// Path returns the request's URL path.
func (c *RequestContext) Path() string { return c.path }

// LoadHeaders returns the request headers as a map of lowercase name to
// value. Repeated headers collapse to the last value per HTTP semantics.
func (c *RequestContext) LoadHeaders() map[string]string {
	if c.headersLoaded {
		return c.headers
	}
	out := make(map[string]string, len(c.rawHeaders))
	for name, values := range c.rawHeaders {
		if len(values) == 0 {
			continue
		}
		out[lowercase(name)] = values[len(values)-1]
	}
	c.headers = out
	c.headersLoaded = true
	return c.headers
}

// LoadQueryArgs returns the parsed query string as a map, collapsing
// repeated keys to their last value (spec.md §3 RequestContext).
func (c *RequestContext) LoadQueryArgs() map[string]string {
	if c.queryLoaded {
		return c.queryArgs
	}
	out := make(map[string]string, len(c.rawQuery))
	for name, values := range c.rawQuery {
		if len(values) == 0 {
			continue
		}
		out[name] = values[len(values)-1]
	}
	c.queryArgs = out
	c.queryLoaded = true
	return c.queryArgs
}

// LoadPathArgs returns the path captures bound by the matched URI pattern's
// "{name}" segments.
func (c *RequestContext) LoadPathArgs() map[string]string {
	return c.pathArgs
}

// LoadBody returns the raw request body bytes.
func (c *RequestContext) LoadBody() []byte {
	return c.rawBody
}

// LoadBodyString decodes the body as UTF-8, replacing invalid byte
// sequences rather than failing (spec.md §4.6: "lossy replacement").
func (c *RequestContext) LoadBodyString() string {
	if c.bodyStrLoaded {
		return c.bodyString
	}
	c.bodyString = toValidUTF8(c.rawBody)
	c.bodyStrLoaded = true
	return c.bodyString
}

// LoadBodyJSON parses the body as JSON. The result and any parse error are
// cached; repeated calls are idempotent and never re-parse.
func (c *RequestContext) LoadBodyJSON() (any, error) {
	if c.bodyJSONLoaded {
		return c.bodyJSON, c.bodyJSONErr
	}
	if len(bytes.TrimSpace(c.rawBody)) == 0 {
		c.bodyJSONLoaded = true
		return nil, nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(c.rawBody))
	c.bodyJSONErr = dec.Decode(&v)
	c.bodyJSON = v
	c.bodyJSONLoaded = true
	return c.bodyJSON, c.bodyJSONErr
}

// IncCounter increments the shared counter named key and returns its
// previous value, available identically from templates and scripts
// (spec.md §9 unifies `inc_counter` visibility across both layers).
func (c *RequestContext) IncCounter(key string) uint64 {
	return c.store.Counters.Inc(key)
}

// StorageRead returns the shared KV value for key, or store.Missing.
func (c *RequestContext) StorageRead(key string) any {
	return c.store.KV.Read(key)
}

// StorageWrite stores value under key and returns the prior value (or
// store.Missing).
func (c *RequestContext) StorageWrite(key string, value any) any {
	return c.store.KV.Write(key, value)
}

// ResponseContext is the per-processor-invocation context: everything
// RequestContext exposes, plus a mutable Body and ResponseCode that a
// processor script may rewrite.
type ResponseContext struct {
	*RequestContext

	Body         []byte
	ResponseCode int // 0 sentinel: inherit the Response's declared code
}

// NewResponse wraps req with the mutable body/status a processor may
// rewrite. ResponseCode always starts at the 0 sentinel ("inherit the code
// the Response Builder already holds"); a processor overrides that code
// only by setting a non-zero value.
func NewResponse(req *RequestContext, body []byte) *ResponseContext {
	return &ResponseContext{
		RequestContext: req,
		Body:           body,
		ResponseCode:   0,
	}
}

func lowercase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}

// ReadAllLimited drains r into a byte slice bounded by limit, the same
// defense-in-depth the teacher's handler applies before matching or
// templating ever sees a request body.
func ReadAllLimited(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
