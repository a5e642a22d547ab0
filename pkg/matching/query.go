package matching

import "net/url"

// MatchQueryArg reports whether name is present in params with exact value
// expected. Repeated query keys collapse to their last value, matching
// RequestContext.load_query_args()'s documented behavior.
func MatchQueryArg(name, expected string, params url.Values) bool {
	values, present := params[name]
	if !present || len(values) == 0 {
		return false
	}
	return values[len(values)-1] == expected
}
