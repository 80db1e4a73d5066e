// Package config binds the program's environment-derived options, the
// way the teacher's cli/internal/config/config.go binds TURBO_* env vars
// onto a struct with envconfig. fcompile has just two: DEBUG (spec.md
// §6) and an escape hatch for the cache document's path.
package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Options holds everything read from the environment. CLI flags are
// bound separately in internal/cmd and layered on top.
type Options struct {
	// Debug enables the slowest-sources table on exit (spec.md §6).
	// Bound by hand rather than through envconfig's bool parsing: the
	// original fcompile.py reads DEBUG with os.environ.get and tests
	// it with a plain `if DEBUG:`, so DEBUG=0 and DEBUG=false are
	// truthy there, same as any other non-empty string. A strict Go
	// bool would invert that for those two values and hard-error on
	// anything else non-canonical, like DEBUG=yes.
	Debug bool `ignored:"true"`

	// CacheFile overrides cachestore.DefaultFilename when set.
	CacheFile string `envconfig:"FCOMPILE_CACHE_FILE"`
}

// Load reads Options from the process environment.
func Load() (Options, error) {
	var opts Options
	if err := envconfig.Process("", &opts); err != nil {
		return Options{}, err
	}
	opts.Debug = os.Getenv("DEBUG") != ""
	return opts, nil
}
