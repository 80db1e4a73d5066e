// Command fcompile incrementally compiles a Fortran module graph
// described by a task manifest on stdin.
package main

import (
	"os"

	"github.com/azag0/fcompile/internal/cmd"
)

func main() {
	os.Exit(cmd.RunWithArgs(os.Args[1:]))
}
