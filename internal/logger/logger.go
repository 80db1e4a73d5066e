// Package logger constructs the one hclog.Logger the whole program
// shares, the way the teacher's cli/internal/cmdutil.Helper.getLogger
// does: silent by default, level driven by a single boolean rather than
// a verbosity count, color auto-detected, output going nowhere unless
// logging is actually enabled.
package logger

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a named logger at Debug level when debug is true, and a
// silent (NoLevel) logger otherwise.
func New(name string, debug bool) hclog.Logger {
	level := hclog.NoLevel
	var output io.Writer = ioutil.Discard
	color := hclog.ColorOff

	if debug {
		level = hclog.Debug
		output = os.Stderr
		color = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: output,
		Color:  color,
	})
}
