package scheduler

import (
	"fmt"

	"github.com/azag0/fcompile/internal/depgraph"
)

// CompilationError is raised when a worker's subprocess exits nonzero.
// The scheduler treats this as fatal: it stops admitting new work,
// cancels the worker pool, and propagates this error to the caller so
// the cache can still be flushed before exit.
type CompilationError struct {
	Source  depgraph.Source
	Retcode int
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compiling %q: exit status %d", e.Source, e.Retcode)
}
