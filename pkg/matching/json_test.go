package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchJSONPathStringEquality(t *testing.T) {
	body := []byte(`{"user":{"name":"trent"}}`)
	assert.True(t, MatchJSONPath("$.user.name", "trent", body))
}

func TestMatchJSONPathNumberCoercedToString(t *testing.T) {
	body := []byte(`{"count":42}`)
	assert.True(t, MatchJSONPath("$.count", "42", body))
}

func TestMatchJSONPathNoMatch(t *testing.T) {
	body := []byte(`{"count":42}`)
	assert.False(t, MatchJSONPath("$.count", "7", body))
}

func TestMatchJSONPathMissingPathFails(t *testing.T) {
	body := []byte(`{"count":42}`)
	assert.False(t, MatchJSONPath("$.missing", "42", body))
}

func TestMatchJSONPathInvalidBodyFails(t *testing.T) {
	assert.False(t, MatchJSONPath("$.count", "42", []byte("not json")))
}

func TestValidateJSONPathExpressionRejectsGarbage(t *testing.T) {
	err := ValidateJSONPathExpression("$[")
	require.Error(t, err)
}

func TestValidateJSONPathExpressionAcceptsValid(t *testing.T) {
	require.NoError(t, ValidateJSONPathExpression("$.user.name"))
}
