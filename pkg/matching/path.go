// Package matching implements the built-in predicates the Dispatcher (C9)
// evaluates directly — URI pattern matching, method, headers, query args —
// plus the JSONPath matcher used by custom MatcherExprs of kind "json".
//
// Matching is exact, segment-based: spec.md §9 fixes globs/regex as out of
// scope, unlike the teacher's wildcard/regex-capable matcher.Path.
package matching

import "strings"

// MatchURI tests a single URI pattern against a request path. A pattern is
// a '/'-separated sequence of literal segments and named-capture segments
// "{name}" that bind one path segment to a key. It returns the captured
// path args and true on match.
func MatchURI(pattern, path string) (pathArgs map[string]string, ok bool) {
	patternSegs := splitSegments(pattern)
	pathSegs := splitSegments(path)
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}

	args := make(map[string]string, len(patternSegs))
	for i, seg := range patternSegs {
		if name, isCapture := captureName(seg); isCapture {
			args[name] = pathSegs[i]
			continue
		}
		if seg != pathSegs[i] {
			return nil, false
		}
	}
	return args, true
}

// MatchURIs tests every pattern in uris in order and returns the args from
// the first one that matches the path, matching the Dispatcher's
// first-pattern-wins rule (spec.md §4.2 step 2a).
func MatchURIs(uris []string, path string) (pathArgs map[string]string, ok bool) {
	for _, u := range uris {
		if args, matched := MatchURI(u, path); matched {
			return args, true
		}
	}
	return nil, false
}

func splitSegments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}

// captureName reports whether seg is a "{name}" capture segment and, if so,
// returns the bound name.
func captureName(seg string) (name string, ok bool) {
	if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2 {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
