package spec

import (
	"strconv"
	"strings"
)

// Validate checks every structural invariant spec.md §3 requires and
// returns the first violation found, wrapped as *ValidationError. A nil
// return means s is safe to install into the Registry.
func Validate(s Spec) error {
	for i := range s.Deceits {
		if err := validateDeceit(i, &s.Deceits[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateDeceit(i int, d *Deceit) error {
	if len(d.URIs) == 0 {
		return &ValidationError{Deceit: i, Reason: "must declare at least one uri"}
	}
	for _, u := range d.URIs {
		if err := validateURIPattern(u); err != nil {
			return &ValidationError{Deceit: i, Reason: err.Error()}
		}
	}
	if len(d.Responses) == 0 {
		return &ValidationError{Deceit: i, Reason: "must declare at least one response"}
	}
	for _, m := range d.Matchers {
		if err := validateMatcher(m); err != nil {
			return &ValidationError{Deceit: i, Reason: err.Error()}
		}
	}
	for ri, r := range d.Responses {
		if err := validateResponse(r); err != nil {
			return &ValidationError{Deceit: i, Reason: "response[" + strconv.Itoa(ri) + "]: " + err.Error()}
		}
	}
	return nil
}

func validateResponse(r Response) error {
	switch r.EffectiveType() {
	case OutputString, OutputHex, OutputBase64, OutputJinja, OutputScript:
	default:
		return &ValidationError{Deceit: -1, Reason: "unknown response type " + string(r.Type)}
	}
	for _, m := range r.Matchers {
		if err := validateMatcher(m); err != nil {
			return err
		}
	}
	return nil
}

func validateMatcher(m MatcherExpr) error {
	switch m.Kind {
	case MatcherScript:
		if strings.TrimSpace(m.Source) == "" {
			return &ValidationError{Deceit: -1, Reason: "script matcher requires source"}
		}
	case MatcherMethod:
		if m.Value == "" {
			return &ValidationError{Deceit: -1, Reason: "method matcher requires value"}
		}
	case MatcherHeader, MatcherQueryArg, MatcherPathArg:
		if m.Name == "" {
			return &ValidationError{Deceit: -1, Reason: string(m.Kind) + " matcher requires name"}
		}
	case MatcherJSON:
		if m.Path == "" {
			return &ValidationError{Deceit: -1, Reason: "json matcher requires path"}
		}
	default:
		return &ValidationError{Deceit: -1, Reason: "unknown matcher type " + string(m.Kind)}
	}
	return nil
}

// validateURIPattern checks that a URI pattern is a '/'-separated sequence
// of literal or "{name}" segments, with every capture name non-empty and
// braces balanced.
func validateURIPattern(pattern string) error {
	if pattern == "" {
		return &ValidationError{Deceit: -1, Reason: "uri pattern must not be empty"}
	}
	if !strings.HasPrefix(pattern, "/") {
		return &ValidationError{Deceit: -1, Reason: "uri pattern must start with '/': " + pattern}
	}
	segments := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	seen := map[string]bool{}
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if strings.Contains(seg, "{") || strings.Contains(seg, "}") {
			if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
				return &ValidationError{Deceit: -1, Reason: "malformed capture segment " + seg + " in " + pattern}
			}
			name := seg[1 : len(seg)-1]
			if name == "" || strings.ContainsAny(name, "{}") {
				return &ValidationError{Deceit: -1, Reason: "malformed capture name in " + pattern}
			}
			if seen[name] {
				return &ValidationError{Deceit: -1, Reason: "duplicate capture name " + name + " in " + pattern}
			}
			seen[name] = true
		}
	}
	return nil
}
