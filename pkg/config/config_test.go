package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustrum/apate/pkg/logging"
)

func TestResolveDefaults(t *testing.T) {
	t.Setenv("APATHE_PORT", "")
	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestResolveFlagPortOverridesEnv(t *testing.T) {
	t.Setenv("APATHE_PORT", "9000")
	cfg, err := Resolve(Options{Port: 1234})
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Port)
}

func TestResolveEnvPortUsedWhenNoFlag(t *testing.T) {
	t.Setenv("APATHE_PORT", "9000")
	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
}

func TestResolveInvalidEnvPort(t *testing.T) {
	t.Setenv("APATHE_PORT", "not-a-number")
	_, err := Resolve(Options{})
	assert.Error(t, err)
}

func TestResolveSpecArgsOverrideEnv(t *testing.T) {
	t.Setenv("APATHE_SPECS_FILE_A", "/env/a.toml")
	cfg, err := Resolve(Options{SpecArgs: []string{"/cli/one.toml", "/cli/two.toml"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/cli/one.toml", "/cli/two.toml"}, cfg.SpecFiles)
}

func TestResolveLogLevelFlagOverridesEnv(t *testing.T) {
	t.Setenv("APATHE_LOG_LEVEL", "error")
	cfg, err := Resolve(Options{LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestResolveLogLevelFromEnvWhenNoFlag(t *testing.T) {
	t.Setenv("APATHE_LOG_LEVEL", "warn")
	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, cfg.LogLevel)
}

func TestResolveLogFormatFromEnv(t *testing.T) {
	t.Setenv("APATHE_LOG_FORMAT", "json")
	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	assert.Equal(t, logging.FormatJSON, cfg.LogFormat)
}

func TestResolveLogFormatDefaultsToText(t *testing.T) {
	t.Setenv("APATHE_LOG_FORMAT", "")
	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	assert.Equal(t, logging.FormatText, cfg.LogFormat)
}

func TestResolveSpecFilesFromEnvSortedByName(t *testing.T) {
	t.Setenv("APATHE_SPECS_FILE_B", "/env/b.toml")
	t.Setenv("APATHE_SPECS_FILE_A", "/env/a.toml")
	cfg, err := Resolve(Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/env/a.toml", "/env/b.toml"}, cfg.SpecFiles)
}
