// Package registry implements the Specification Registry (C8): the single
// holder of the currently active Spec, swapped atomically under one writer
// lock so the Dispatcher never observes a partially-replaced specification.
package registry

import (
	"fmt"
	"sync"

	"github.com/rustrum/apate/pkg/apierr"
	"github.com/rustrum/apate/pkg/matching"
	"github.com/rustrum/apate/pkg/spec"
)

// Registry holds one active spec.Spec, like the teacher's
// store.EngineRegistry holds its engine map, but swapped wholesale instead
// of mutated field-by-field — a Spec value is immutable once validated, so
// readers never need more than a snapshot reference.
type Registry struct {
	mu     sync.RWMutex
	active spec.Spec
}

// New builds a Registry holding the given already-validated Spec.
func New(initial spec.Spec) *Registry {
	return &Registry{active: initial}
}

// Snapshot returns the currently active Spec. The returned value is safe
// to range over concurrently with any writer; replacing the active Spec
// never mutates a previously returned snapshot, since Replace/Append/
// Prepend construct a new Spec value rather than editing in place.
func (r *Registry) Snapshot() spec.Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Replace validates next and, only if it passes, installs it as the active
// Spec. On validation failure the active Spec is left untouched and the
// validation error is returned: a *spec.ValidationError, or a wrapped
// JSONPath error for a malformed json matcher.
func (r *Registry) Replace(next spec.Spec) error {
	if err := validate(next); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = next
	return nil
}

// Append validates the concatenation of the active Spec followed by addition
// and, only if it passes, installs the result. Failure leaves the active
// Spec untouched.
func (r *Registry) Append(addition spec.Spec) error {
	return r.merge(func(current spec.Spec) spec.Spec {
		return spec.Concat(current, addition)
	})
}

// Prepend validates the concatenation of addition followed by the active
// Spec and, only if it passes, installs the result. Failure leaves the
// active Spec untouched.
func (r *Registry) Prepend(addition spec.Spec) error {
	return r.merge(func(current spec.Spec) spec.Spec {
		return spec.Concat(addition, current)
	})
}

// merge holds the write lock for the full read-combine-validate-install
// sequence so two concurrent Append/Prepend calls can never race each
// other's view of the active Spec.
func (r *Registry) merge(combine func(current spec.Spec) spec.Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := combine(r.active)
	if err := validate(merged); err != nil {
		return err
	}
	r.active = merged
	return nil
}

// ValidateAndWrap runs the same checks Replace/Append/Prepend apply to a
// Spec that is not being installed (cmd/apate uses it on the initial spec
// at startup) and, on failure, wraps the error as an *apierr.Error with
// KindSpecValidation so callers don't need to know about
// spec.ValidationError or matching's JSONPath errors directly.
func ValidateAndWrap(s spec.Spec) error {
	if err := validate(s); err != nil {
		return apierr.Wrap(apierr.KindSpecValidation, "invalid specification", err)
	}
	return nil
}

// validate runs spec.Validate's structural checks plus the one check
// spec.Validate can't perform itself without an import cycle: that every
// MatcherJSON's Path is a well-formed JSONPath expression. pkg/spec cannot
// depend on pkg/matching (pkg/matching already depends on pkg/spec), so
// this extra pass lives here, the first layer above both.
func validate(s spec.Spec) error {
	if err := spec.Validate(s); err != nil {
		return err
	}
	for i, d := range s.Deceits {
		if err := validateMatcherJSONPaths(d.Matchers); err != nil {
			return fmt.Errorf("deceit %d: %w", i, err)
		}
		for ri, resp := range d.Responses {
			if err := validateMatcherJSONPaths(resp.Matchers); err != nil {
				return fmt.Errorf("deceit %d response %d: %w", i, ri, err)
			}
		}
	}
	return nil
}

func validateMatcherJSONPaths(matchers []spec.MatcherExpr) error {
	for _, m := range matchers {
		if m.Kind == spec.MatcherJSON {
			if err := matching.ValidateJSONPathExpression(m.Path); err != nil {
				return err
			}
		}
	}
	return nil
}
