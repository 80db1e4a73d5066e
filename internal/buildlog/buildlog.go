// Package buildlog prints the DEBUG-gated slowest-sources table (spec.md
// §6, §9), matching fcompile.py's print_clocks: the 20 slowest sources
// by wall-clock time, column-aligned on the longest source name.
package buildlog

import (
	"fmt"
	"io"
	"sort"

	"github.com/azag0/fcompile/internal/scheduler"
)

const slowestCount = 20

// PrintClocks writes the slowest sources in timings (at most
// slowestCount of them) to w, slowest first, column-aligned on the
// widest source name.
func PrintClocks(w io.Writer, timings []scheduler.Timing) {
	if len(timings) == 0 {
		return
	}

	sorted := make([]scheduler.Timing, len(timings))
	copy(sorted, timings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Elapsed > sorted[j].Elapsed })

	if len(sorted) > slowestCount {
		sorted = sorted[:slowestCount]
	}

	width := 0
	for _, t := range sorted {
		if n := len(t.Source); n > width {
			width = n
		}
	}

	for _, t := range sorted {
		fmt.Fprintf(w, "%-*s  %8.2f s\n", width, t.Source, t.Elapsed.Seconds())
	}
}
