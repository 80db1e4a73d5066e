// Package progress renders the scheduler's status line and per-source
// completion announcements (spec.md §6: "a single carriage-return
// terminated status line... plus full-line announcements"). Color and
// TTY detection follow the teacher's cli/internal/ui/ui.go (IsTTY via
// go-isatty, dimmed text via fatih/color); the exact line format is not
// a compatibility contract and is pinned down in SPEC_FULL.md's
// supplemented-features section instead.
package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/azag0/fcompile/internal/depgraph"
	"github.com/azag0/fcompile/internal/scheduler"
)

// IsTTY is true when Stdout appears to be an interactive terminal.
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var dim = color.New(color.Faint)

// Reporter writes scheduler.Status snapshots and completion
// announcements to w, overwriting the status line in place on a TTY and
// falling back to plain newline-terminated lines otherwise.
type Reporter struct {
	w           io.Writer
	color       bool
	lastLineLen int
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w, color: IsTTY}
}

// Status implements scheduler.Reporter.
func (r *Reporter) Status(s scheduler.Status) {
	pct := 0.0
	if s.NAllLines > 0 {
		pct = 100 * float64(s.NLines) / float64(s.NAllLines)
	}

	eta := "NaN"
	if !math.IsNaN(s.ETA) {
		eta = fmt.Sprintf("%.1f", s.ETA)
	}

	line := fmt.Sprintf(
		"%d waiting, %d scheduled, %d running, %d/%d lines (%.1f%%), Elapsed/ETA: %.1f/%s s",
		s.Waiting, s.Scheduled, s.Running, s.NLines, s.NAllLines, pct, s.Elapsed.Seconds(), eta,
	)
	if r.color {
		line = dim.Sprint(line)
	}

	if IsTTY {
		pad := r.lastLineLen - len(line)
		if pad < 0 {
			pad = 0
		}
		fmt.Fprintf(r.w, "\r%s%*s", line, pad, "")
		r.lastLineLen = len(line)
	} else {
		fmt.Fprintln(r.w, line)
	}
}

// Completed implements scheduler.Reporter, printing a full line that
// does not get overwritten by the next Status call.
func (r *Reporter) Completed(src depgraph.Source, elapsed time.Duration) {
	prefix := ""
	if IsTTY {
		prefix = "\n"
	}
	fmt.Fprintf(r.w, "%scompiled %s (%.2fs)\n", prefix, src, elapsed.Seconds())
	r.lastLineLen = 0
}
