package matching

import "strings"

// MatchMethod reports whether method is accepted by methods. An empty
// methods set accepts any method (spec.md §3 "empty ≡ any").
func MatchMethod(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}
