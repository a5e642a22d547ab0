package matching

import "net/http"

// MatchRequiredHeaders reports whether every (name, value) pair in required
// is present in headers with that exact value. Header names are matched
// case-insensitively; values are matched case-sensitively (spec.md §9
// resolves this ambiguity explicitly).
func MatchRequiredHeaders(required map[string]string, headers http.Header) bool {
	for name, want := range required {
		values, present := headers[http.CanonicalHeaderKey(name)]
		if !present || len(values) == 0 || values[0] != want {
			return false
		}
	}
	return true
}
