package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// MatchJSONPath evaluates a single JSONPath expression against a JSON body
// and reports whether any extracted value equals expected. Grounded
// on the teacher's internal/matching/jsonpath.go single-condition check,
// trimmed to the one-path-one-value shape spec.md's MatcherJSON needs.
func MatchJSONPath(path, expected string, body []byte) bool {
	expr, err := jp.ParseString(path)
	if err != nil {
		return false
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	results := expr.Get(data)
	if len(results) == 0 {
		return false
	}

	for _, result := range results {
		if valuesEqual(result, expected) {
			return true
		}
	}
	return false
}

// ValidateJSONPathExpression validates a JSONPath expression at spec load
// time so a malformed matcher is rejected before it can reach dispatch.
func ValidateJSONPathExpression(path string) error {
	if _, err := jp.ParseString(path); err != nil {
		return fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
	}
	return nil
}

// valuesEqual compares an extracted JSON value against the matcher's
// string-typed expected value, coercing numbers and booleans to their
// string form so `eq = "42"` matches a JSON number 42.
func valuesEqual(actual any, expected string) bool {
	switch v := actual.(type) {
	case string:
		return v == expected
	case nil:
		return expected == "null"
	default:
		if reflect.DeepEqual(fmt.Sprintf("%v", v), expected) {
			return true
		}
		return fmt.Sprintf("%v", v) == expected
	}
}
