// Package process manages the lifecycle of a single compiler
// subprocess, adapted from the teacher's cli/internal/process/child.go
// (itself based on hashicorp/consul-template's child.go): the parts
// kept are the exec.Cmd wrapping and the hclog.Logger naming. Restart,
// signal-forwarding and splay are dropped — a one-shot compiler
// invocation doesn't need any of them; cancellation happens once, via
// the context passed to New, not via repeated Signal calls.
package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ExitCodeError is used when a subprocess exits abnormally and the
// real exit status can't be recovered from the OS.
const ExitCodeError = 127

// Child runs one compiler invocation and reports how it went.
type Child struct {
	cmd    *exec.Cmd
	logger hclog.Logger
	label  string
}

// New builds a Child for args (the full command, source path already
// appended). The subprocess is killed if ctx is canceled before it
// exits.
func New(ctx context.Context, args []string, logger hclog.Logger) *Child {
	label := strings.Join(args, " ")
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	return &Child{
		cmd:    cmd,
		logger: logger.Named(label),
		label:  label,
	}
}

// Label returns the human-readable command line for this child.
func (c *Child) Label() string {
	return c.label
}

// Run starts the subprocess and blocks until it exits, returning its
// exit code and wall-clock duration. A non-zero code is not a Go error
// — deciding what a failing compile means is the scheduler's job; Run
// only reports what happened.
func (c *Child) Run() (exitCode int, elapsed time.Duration, err error) {
	c.logger.Debug("starting", "cmd", c.label)
	start := time.Now()
	runErr := c.cmd.Run()
	elapsed = time.Since(start)

	if runErr == nil {
		return 0, elapsed, nil
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus(), elapsed, nil
		}
		return ExitCodeError, elapsed, nil
	}

	// cmd never started (binary missing, etc.) — this is an
	// infrastructure error, not a compilation failure.
	return 0, elapsed, fmt.Errorf("starting %q: %w", c.label, runErr)
}
