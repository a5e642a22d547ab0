package spec

// DeceitBuilder assembles a Deceit fluently, mirroring the
// original_source/src/deceit.rs DeceitBuilder used by the original's own
// test suite and by the custom-server extension facade.
type DeceitBuilder struct {
	d Deceit
}

// NewDeceit starts a builder with the given URI patterns.
func NewDeceit(uris ...string) *DeceitBuilder {
	return &DeceitBuilder{d: Deceit{URIs: uris}}
}

// Methods restricts the accepted HTTP methods.
func (b *DeceitBuilder) Methods(methods ...string) *DeceitBuilder {
	b.d.Methods = append(b.d.Methods, methods...)
	return b
}

// RequireHeader adds a required header/value pair.
func (b *DeceitBuilder) RequireHeader(name, value string) *DeceitBuilder {
	if b.d.RequiredHeaders == nil {
		b.d.RequiredHeaders = map[string]string{}
	}
	b.d.RequiredHeaders[name] = value
	return b
}

// Match adds a custom matcher that gates the whole Deceit.
func (b *DeceitBuilder) Match(m MatcherExpr) *DeceitBuilder {
	b.d.Matchers = append(b.d.Matchers, m)
	return b
}

// Arg sets a value in the Deceit's args bag.
func (b *DeceitBuilder) Arg(key string, value any) *DeceitBuilder {
	if b.d.Args == nil {
		b.d.Args = map[string]any{}
	}
	b.d.Args[key] = value
	return b
}

// AddResponse appends a Response built with a ResponseBuilder.
func (b *DeceitBuilder) AddResponse(r *ResponseBuilder) *DeceitBuilder {
	b.d.Responses = append(b.d.Responses, r.r)
	return b
}

// Build returns the assembled Deceit.
func (b *DeceitBuilder) Build() Deceit {
	return b.d
}

// ResponseBuilder assembles a Response fluently.
type ResponseBuilder struct {
	r Response
}

// NewResponse starts a builder with the output body interpreted as
// OutputString by default.
func NewResponse(output string) *ResponseBuilder {
	return &ResponseBuilder{r: Response{Output: output, Type: OutputString}}
}

// Code sets the HTTP status code.
func (b *ResponseBuilder) Code(code int) *ResponseBuilder {
	b.r.Code = code
	return b
}

// Type sets the output type.
func (b *ResponseBuilder) Type(t OutputType) *ResponseBuilder {
	b.r.Type = t
	return b
}

// Header sets a response header.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	if b.r.Headers == nil {
		b.r.Headers = map[string]string{}
	}
	b.r.Headers[name] = value
	return b
}

// Match adds a matcher gating this specific response variant.
func (b *ResponseBuilder) Match(m MatcherExpr) *ResponseBuilder {
	b.r.Matchers = append(b.r.Matchers, m)
	return b
}

// Process appends a post-processor script source to the pipeline.
func (b *ResponseBuilder) Process(name string) *ResponseBuilder {
	b.r.Processors = append(b.r.Processors, name)
	return b
}

// Build returns the assembled Response.
func (b *ResponseBuilder) Build() Response {
	return b.r
}
