package spec

import "fmt"

// ValidationError reports a structural problem found while validating a
// Spec: an empty URI list, an empty Response list, a malformed URI
// pattern, or an unknown matcher/output type.
type ValidationError struct {
	// Deceit is the index of the offending Deceit within Spec.Deceits, or
	// -1 if the problem is not tied to a single Deceit.
	Deceit int

	// Reason describes what failed.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Deceit < 0 {
		return fmt.Sprintf("spec validation: %s", e.Reason)
	}
	return fmt.Sprintf("spec validation: deceit[%d]: %s", e.Deceit, e.Reason)
}
