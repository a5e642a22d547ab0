// Package config assembles apate's runtime configuration from CLI flags
// and environment variables per spec.md §6: port, log level/format, and
// the ordered list of spec files to load at startup.
package config

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rustrum/apate/pkg/logging"
)

// DefaultPort is the HTTP server port used when neither -p nor APATHE_PORT
// is given.
const DefaultPort = 8228

// envPortKey and envSpecsFilePrefix name the environment variables
// spec.md §6 defines. envLogLevelKey/envLogFormatKey are the "standard
// logging env vars" spec.md §6 defers to an external collaborator for.
const (
	envPortKey         = "APATHE_PORT"
	envSpecsFilePrefix = "APATHE_SPECS_FILE"
	envLogLevelKey     = "APATHE_LOG_LEVEL"
	envLogFormatKey    = "APATHE_LOG_FORMAT"
)

// Config is the fully-resolved set of values needed to start apate.
type Config struct {
	Port      int
	LogLevel  logging.Level
	LogFormat logging.Format
	SpecFiles []string
}

// Options carries the raw CLI flag values before environment fallback is
// applied. A zero Port means "-p was not given"; a nil/empty SpecArgs means
// "no positional spec file arguments were given".
type Options struct {
	Port     int
	LogLevel string
	SpecArgs []string
}

// Resolve builds a Config from CLI options, falling back to environment
// variables exactly as spec.md §6 specifies: "-p" overrides APATHE_PORT;
// positional spec args override the env-derived file list entirely.
func Resolve(opts Options) (Config, error) {
	cfg := Config{Port: DefaultPort}

	if opts.Port != 0 {
		cfg.Port = opts.Port
	} else if v := os.Getenv(envPortKey); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &InvalidEnvError{Name: envPortKey, Value: v, Err: err}
		}
		cfg.Port = port
	}

	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = os.Getenv(envLogLevelKey)
	}
	cfg.LogLevel = logging.ParseLevel(logLevel)
	cfg.LogFormat = logging.ParseFormat(os.Getenv(envLogFormatKey))

	if len(opts.SpecArgs) > 0 {
		cfg.SpecFiles = opts.SpecArgs
	} else {
		cfg.SpecFiles = specFilesFromEnv(os.Environ())
	}

	return cfg, nil
}

// specFilesFromEnv collects every APATHE_SPECS_FILE* variable's value,
// ordered alphabetically by variable name, per spec.md §6.
func specFilesFromEnv(environ []string) []string {
	type pair struct{ name, value string }
	var pairs []pair
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envSpecsFilePrefix) {
			continue
		}
		pairs = append(pairs, pair{name, value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	files := make([]string, len(pairs))
	for i, p := range pairs {
		files[i] = p.value
	}
	return files
}

// InvalidEnvError reports an environment variable that failed to parse.
type InvalidEnvError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidEnvError) Error() string {
	return "config: invalid " + e.Name + "=" + e.Value + ": " + e.Err.Error()
}

func (e *InvalidEnvError) Unwrap() error { return e.Err }
