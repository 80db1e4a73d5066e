package depgraph

import "fmt"

// ModuleMultipleDefined is raised when two sources both define the same
// module. The build graph is rejected before any compilation starts.
type ModuleMultipleDefined struct {
	Module  string
	Sources [2]string
}

func (e *ModuleMultipleDefined) Error() string {
	return fmt.Sprintf("module %q is defined in both %q and %q", e.Module, e.Sources[0], e.Sources[1])
}

// ModuleNotDefined is raised when a source uses a module that no task
// defines, no include directory satisfies, and isn't one of the two
// always-or-conditionally dropped special cases (iso_c_binding, mpi).
type ModuleNotDefined struct {
	Module string
}

func (e *ModuleNotDefined) Error() string {
	return fmt.Sprintf("module %q is not defined by any source", e.Module)
}
