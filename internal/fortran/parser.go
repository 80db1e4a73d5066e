// Package fortran parses the module and use declarations out of a Fortran
// source file, the way a real Fortran frontend's first incremental-build
// pass would: lexically, line by line, without honoring preprocessor
// directives or continuation lines.
package fortran

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Module is a lowercased module identifier.
type Module string

var identRe = regexp.MustCompile(`^(module|use)\s+(\w+)`)

// Parsed holds the result of scanning one source file.
type Parsed struct {
	LineCount int
	Defined   []Module
	Used      map[Module]struct{}
}

// Parse scans r line by line, collecting the modules it defines and the
// modules it uses. A file's own definitions are subtracted from its uses,
// so self-reference never produces a dependency edge.
func Parse(r io.Reader) (Parsed, error) {
	defined := make([]Module, 0, 4)
	used := make(map[Module]struct{})
	nlines := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		nlines++
		line := strings.TrimLeft(scanner.Text(), " \t")
		if line == "" || line[0] == '!' {
			continue
		}
		word := strings.ToLower(firstWord(line))
		switch word {
		case "module":
			if mod, ok := matchKeyword(line, "module"); ok && mod != "procedure" {
				defined = append(defined, Module(mod))
			}
		case "use":
			if mod, ok := matchKeyword(line, "use"); ok {
				used[Module(mod)] = struct{}{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Parsed{}, err
	}

	for _, mod := range defined {
		delete(used, mod)
	}

	return Parsed{LineCount: nlines, Defined: defined, Used: used}, nil
}

func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// matchKeyword extracts the identifier following a case-insensitive
// keyword, e.g. "Use Foo_Bar" -> ("foo_bar", true).
func matchKeyword(line, keyword string) (string, bool) {
	m := identRe.FindStringSubmatch(strings.ToLower(line))
	if m == nil || m[1] != keyword {
		return "", false
	}
	return m[2], true
}
