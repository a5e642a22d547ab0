package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomNumNoArgsIsNonNegative(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.GreaterOrEqual(t, RandomNum(), int64(0))
	}
}

func TestRandomNumOneArgIsBoundedExclusive(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := RandomNum(10)
		assert.GreaterOrEqual(t, n, int64(0))
		assert.Less(t, n, int64(10))
	}
}

func TestRandomNumOneArgNonPositiveIsZero(t *testing.T) {
	assert.Equal(t, int64(0), RandomNum(0))
	assert.Equal(t, int64(0), RandomNum(-5))
}

func TestRandomNumTwoArgsIsBoundedRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := RandomNum(5, 10)
		assert.GreaterOrEqual(t, n, int64(5))
		assert.Less(t, n, int64(10))
	}
}

func TestRandomNumTwoArgsHandlesReversedBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := RandomNum(10, 5)
		assert.GreaterOrEqual(t, n, int64(5))
		assert.Less(t, n, int64(10))
	}
}

func TestRandomNumTwoArgsEqualBoundsReturnsThatValue(t *testing.T) {
	assert.Equal(t, int64(7), RandomNum(7, 7))
}

func TestRandomHexDefaultsTo32Chars(t *testing.T) {
	h := RandomHex()
	assert.Len(t, h, 32)
	assert.Regexp(t, regexp.MustCompile("^[0-9a-f]+$"), h)
}

func TestRandomHexCustomByteCount(t *testing.T) {
	h := RandomHex(4)
	assert.Len(t, h, 8)
}

func TestUUIDv4ProducesDistinctValidUUIDs(t *testing.T) {
	a, b := UUIDv4(), UUIDv4()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`), a)
}

func TestClampInt64ClampsOverflow(t *testing.T) {
	assert.Equal(t, int64(9223372036854775807), ClampInt64(1e30))
	assert.Equal(t, int64(-9223372036854775808), ClampInt64(-1e30))
	assert.Equal(t, int64(42), ClampInt64(42.0))
}
