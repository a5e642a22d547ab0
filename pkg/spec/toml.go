package spec

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Parse decodes a single TOML document into a Spec. It does not validate;
// callers should run Validate before installing the result.
func Parse(data []byte) (Spec, error) {
	var s Spec
	if err := toml.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("spec: parse toml: %w", err)
	}
	return s, nil
}

// Encode serializes a Spec back to TOML, used by the admin surface's
// GET /apate/specs endpoint.
func Encode(s Spec) ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("spec: encode toml: %w", err)
	}
	return data, nil
}

// LoadFile reads and parses a single TOML spec file.
func LoadFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("spec: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFiles reads and concatenates a list of spec files in the order given,
// matching spec.md §6's "multiple spec files given on the command line are
// concatenated in argument order" rule.
func LoadFiles(paths []string) (Spec, error) {
	var out Spec
	for _, p := range paths {
		s, err := LoadFile(p)
		if err != nil {
			return Spec{}, err
		}
		out = Concat(out, s)
	}
	return out, nil
}
