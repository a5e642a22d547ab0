package scripting

import "encoding/json"

// ToJSONBlob implements to_json_blob(value): UTF-8 JSON serialization into
// a bytes value scripts can assign directly to a response body.
func ToJSONBlob(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// FromJSONBlob implements from_json_blob(bytes): parses JSON, panicking on
// invalid input so the Host's recovered-panic path surfaces it as a
// script error (spec.md §4.5: "throws on invalid JSON").
func FromJSONBlob(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		panic(&Error{Source: "from_json_blob", Err: err})
	}
	return v
}
