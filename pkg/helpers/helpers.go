// Package helpers holds the random/uuid/hex generator functions injected into
// both the Template Renderer and the Script Host so the two layers can never
// drift on semantics (see original_source/src/output.rs's add_clean_functions).
package helpers

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
)

// RandomNum implements random_num()/random_num(max)/random_num(a, b).
//
//   - no args: a non-negative integer spanning the full platform int range.
//   - one arg (max): an integer in [0, max).
//   - two args (a, b): an integer in [min(a,b), max(a,b)).
func RandomNum(args ...int64) int64 {
	switch len(args) {
	case 0:
		n := rand.Int64()
		if n < 0 {
			n = -n
		}
		return n
	case 1:
		max := args[0]
		if max <= 0 {
			return 0
		}
		return rand.Int64N(max)
	default:
		a, b := args[0], args[1]
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo == hi {
			return lo
		}
		return lo + rand.Int64N(hi-lo)
	}
}

// RandomHex implements random_hex()/random_hex(n_bytes).
// Defaults to 16 bytes, producing 32 hex characters.
func RandomHex(nBytes ...int) string {
	n := 16
	if len(nBytes) > 0 && nBytes[0] > 0 {
		n = nBytes[0]
	}
	buf := make([]byte, n)
	if _, err := cryptorand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

// UUIDv4 implements uuid_v4(): an RFC-4122 version 4 UUID.
func UUIDv4() string {
	return uuid.New().String()
}

// ClampInt64 guards against overflow when converting from float-typed
// script/template arguments.
func ClampInt64(f float64) int64 {
	if f > math.MaxInt64 {
		return math.MaxInt64
	}
	if f < math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}
