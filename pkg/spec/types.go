// Package spec defines the Specification Model (C1): the immutable
// in-memory tree of Deceits (routes), matchers, responses and processors
// that the Dispatcher, Matcher Engine and Response Builder all read from.
//
// A Spec value, once returned by Parse/Validate, never changes in place —
// the Registry (pkg/registry) is what hands out fresh Spec values as the
// active specification is swapped, appended to, or prepended to.
package spec

// OutputType selects how a Response's Output string is turned into bytes.
type OutputType string

// Supported output types.
const (
	OutputString OutputType = "string"
	OutputHex    OutputType = "hex"
	OutputBase64 OutputType = "base64"
	OutputJinja  OutputType = "jinja"
	OutputRhai   OutputType = "rhai"
	OutputScript OutputType = "script"
)

// normalizedOutputType returns the canonical OutputType, defaulting empty to
// OutputString and mapping "rhai" and "script" onto the same code path.
func normalizedOutputType(t string) OutputType {
	switch OutputType(t) {
	case "", OutputString:
		return OutputString
	case OutputHex:
		return OutputHex
	case OutputBase64:
		return OutputBase64
	case OutputJinja:
		return OutputJinja
	case OutputRhai, OutputScript:
		return OutputScript
	default:
		return OutputType(t)
	}
}

// MatcherKind identifies which built-in predicate a MatcherExpr evaluates.
type MatcherKind string

// Matcher kinds. "script" is the only kind spec.md's data model names
// explicitly; the rest are built-in predicates carried over from
// original_source/src/matchers.rs so custom matchers aren't limited to
// scripting for the common cases.
const (
	MatcherScript   MatcherKind = "script"
	MatcherMethod   MatcherKind = "method"
	MatcherHeader   MatcherKind = "header"
	MatcherQueryArg MatcherKind = "query_arg"
	MatcherPathArg  MatcherKind = "path_arg"
	MatcherJSON     MatcherKind = "json"
)

// MatcherExpr is a single boolean predicate gating a Deceit or a Response
// variant. Exactly the fields relevant to Kind are populated; the rest are
// left zero. This flat-with-discriminator shape (rather than a Go sum type)
// mirrors the pattern the rest of the spec file's tables already use and
// maps directly onto a TOML table without custom (un)marshaling.
type MatcherExpr struct {
	Kind MatcherKind `toml:"type"`

	// Source is the script body for MatcherScript.
	Source string `toml:"source,omitempty"`

	// Name is the header/query-arg/path-arg key for MatcherHeader,
	// MatcherQueryArg and MatcherPathArg.
	Name string `toml:"name,omitempty"`

	// Value is the expected value for MatcherHeader, MatcherQueryArg,
	// MatcherPathArg and the expected HTTP method for MatcherMethod.
	Value string `toml:"value,omitempty"`

	// Path is the JSONPath expression for MatcherJSON.
	Path string `toml:"path,omitempty"`

	// Eq is the expected value extracted by Path for MatcherJSON.
	Eq string `toml:"eq,omitempty"`
}

// Response is one response candidate belonging to a Deceit.
type Response struct {
	// Code is the HTTP status code. Zero means "use DefaultResponseCode".
	Code int `toml:"code,omitempty"`

	// Headers are emitted verbatim; no implicit Content-Type is added.
	Headers map[string]string `toml:"headers,omitempty"`

	// Output is the raw body source, interpreted according to Type.
	Output string `toml:"output,omitempty"`

	// Type selects how Output is decoded/rendered. Defaults to OutputString.
	Type OutputType `toml:"type,omitempty"`

	// Matchers are additional per-response predicates; all must pass for
	// this Response to be selected.
	Matchers []MatcherExpr `toml:"matchers,omitempty"`

	// Processors run, in order, after Output is materialized into bytes.
	// Each may rewrite the body and the status code.
	Processors []string `toml:"processors,omitempty"`
}

// DefaultResponseCode is used when a Response does not declare Code.
const DefaultResponseCode = 200

// EffectiveCode returns Code, or DefaultResponseCode when Code is zero.
func (r *Response) EffectiveCode() int {
	if r.Code == 0 {
		return DefaultResponseCode
	}
	return r.Code
}

// EffectiveType returns the canonicalized OutputType.
func (r *Response) EffectiveType() OutputType {
	return normalizedOutputType(string(r.Type))
}

// Deceit is a single route: one or more URI patterns, gating conditions,
// and an ordered list of Response candidates.
type Deceit struct {
	// URIs is a non-empty set of URI patterns. A pattern is a
	// '/'-separated sequence of literal segments and named-capture
	// segments "{name}" that bind one path segment to a key. The first
	// pattern in this list that matches the request path wins.
	URIs []string `toml:"uris"`

	// Methods restricts which HTTP methods this Deceit accepts. Empty
	// means any method.
	Methods []string `toml:"methods,omitempty"`

	// RequiredHeaders maps lowercase header name to the exact value that
	// must be present (case-insensitive name, case-sensitive value).
	RequiredHeaders map[string]string `toml:"required_headers,omitempty"`

	// Matchers are custom predicates; all must pass for this Deceit to be
	// a candidate.
	Matchers []MatcherExpr `toml:"matchers,omitempty"`

	// Responses is a non-empty ordered list of candidates; the first whose
	// own Matchers all pass (or which declares none) is used.
	Responses []Response `toml:"responses"`

	// Args is an opaque bag of user-defined values surfaced to scripts and
	// templates as `args`.
	Args map[string]any `toml:"args,omitempty"`
}

// Spec is the root document: an ordered sequence of Deceits. Insertion
// order is semantically significant — earlier Deceits are tried first and
// ties go to the first match.
type Spec struct {
	Deceits []Deceit `toml:"deceits"`
}

// Concat returns a new Spec whose Deceit list is the concatenation of a
// followed by b. Neither input is mutated.
func Concat(a, b Spec) Spec {
	out := make([]Deceit, 0, len(a.Deceits)+len(b.Deceits))
	out = append(out, a.Deceits...)
	out = append(out, b.Deceits...)
	return Spec{Deceits: out}
}

// Empty reports whether the Spec has no Deceits.
func (s Spec) Empty() bool {
	return len(s.Deceits) == 0
}
