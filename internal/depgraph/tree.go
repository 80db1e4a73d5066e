// Package depgraph builds the module-level dependency graph (the
// TaskTree of spec.md §3) out of the parsed sources of a task manifest,
// and enforces the global invariants: a module is defined at most once,
// and every surviving use resolves to a definition.
//
// Ancestor computation is backed by github.com/pyr-sh/dag's
// AcyclicGraph, the same structure the teacher's cli/internal/core
// engine uses for package-task dependency ordering: BasicEdge(dependent,
// dependency) plus Ancestors(dependent) gives exactly the transitive
// "must precede it" set spec.md §3 calls ancestors.
package depgraph

import (
	"os"
	"path/filepath"

	"github.com/pyr-sh/dag"

	"github.com/azag0/fcompile/internal/fingerprint"
	"github.com/azag0/fcompile/internal/fortran"
)

// Source is the stable identity of a compilation unit, as supplied by
// the task manifest.
type Source string

// Task is one compilation unit: where its source lives, the argument
// tokens used to invoke the compiler (the source path is appended at
// dispatch time), and the include directories searched for pre-built
// .mod files.
type Task struct {
	SourcePath string
	Args       []string
	Includes   []string
}

const (
	modISOCBinding = fortran.Module("iso_c_binding")
	modMPI         = fortran.Module("mpi")
)

// Tree is the immutable, fully-resolved dependency graph for one run's
// set of tasks.
type Tree struct {
	SrcMods   map[Source][]fortran.Module
	ModUses   map[fortran.Module][]Source
	Hashes    map[string]fingerprint.Hash
	LineNums  map[Source]int
	Priority  map[Source]int
	Ancestors map[Source]map[Source]struct{}
}

// Build parses and hashes every task's source, resolves module uses
// against definitions and include-directory .mod files, and computes
// priorities and ancestor sets. It returns *ModuleMultipleDefined or
// *ModuleNotDefined on invariant violations.
func Build(tasks map[Source]Task) (*Tree, error) {
	srcMods := make(map[Source][]fortran.Module, len(tasks))
	srcDeps := make(map[Source]map[fortran.Module]struct{}, len(tasks))
	modDefs := make(map[fortran.Module]Source, len(tasks))
	hashes := make(map[string]fingerprint.Hash, len(tasks))
	lineNums := make(map[Source]int, len(tasks))

	for src, task := range tasks {
		f, err := os.Open(task.SourcePath)
		if err != nil {
			return nil, err
		}
		parsed, err := fortran.Parse(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		srcMods[src] = parsed.Defined
		srcDeps[src] = parsed.Used
		lineNums[src] = parsed.LineCount

		h, err := fingerprint.Source(task.SourcePath, task.Args)
		if err != nil {
			return nil, err
		}
		hashes[string(src)] = h

		for _, mod := range parsed.Defined {
			if existing, ok := modDefs[mod]; ok {
				return nil, &ModuleMultipleDefined{
					Module:  string(mod),
					Sources: [2]string{string(existing), string(src)},
				}
			}
			modDefs[mod] = src
		}
	}

	_, mpiDefined := modDefs[modMPI]
	for _, used := range srcDeps {
		delete(used, modISOCBinding)
		if !mpiDefined {
			delete(used, modMPI)
		}
	}

	for src, task := range tasks {
		if len(task.Includes) == 0 {
			continue
		}
		for mod := range srcDeps[src] {
			if hasIncludeModFile(task.Includes, mod) {
				delete(srcDeps[src], mod)
			}
		}
	}

	for _, used := range srcDeps {
		for mod := range used {
			if _, ok := modDefs[mod]; !ok {
				return nil, &ModuleNotDefined{Module: string(mod)}
			}
		}
	}

	modUses := make(map[fortran.Module][]Source)
	for src, used := range srcDeps {
		for mod := range used {
			modUses[mod] = append(modUses[mod], src)
		}
	}

	priority := computePriority(tasks, srcMods, modUses)
	ancestors, err := computeAncestors(tasks, srcDeps, modDefs)
	if err != nil {
		return nil, err
	}

	return &Tree{
		SrcMods:   srcMods,
		ModUses:   modUses,
		Hashes:    hashes,
		LineNums:  lineNums,
		Priority:  priority,
		Ancestors: ancestors,
	}, nil
}

func hasIncludeModFile(includes []string, mod fortran.Module) bool {
	for _, dir := range includes {
		if _, err := os.Stat(filepath.Join(dir, string(mod)+".mod")); err == nil {
			return true
		}
	}
	return false
}

// computePriority is 1 plus the sum of priorities of a source's
// children, where a source's children are the (deduplicated) sources
// that use any module it defines. Memoized recursion over the DAG,
// bounded by the longest dependency chain.
func computePriority(
	tasks map[Source]Task,
	srcMods map[Source][]fortran.Module,
	modUses map[fortran.Module][]Source,
) map[Source]int {
	priority := make(map[Source]int, len(tasks))

	var visit func(src Source) int
	visit = func(src Source) int {
		if p, ok := priority[src]; ok {
			return p
		}
		children := make(map[Source]struct{})
		for _, mod := range srcMods[src] {
			for _, child := range modUses[mod] {
				children[child] = struct{}{}
			}
		}
		p := 1
		for child := range children {
			p += visit(child)
		}
		priority[src] = p
		return p
	}
	for src := range tasks {
		visit(src)
	}
	return priority
}

// computeAncestors builds a dag.AcyclicGraph with one edge per
// (dependent, dependency) pair and reads back each source's transitive
// ancestor set via the graph's own Ancestors walk.
func computeAncestors(
	tasks map[Source]Task,
	srcDeps map[Source]map[fortran.Module]struct{},
	modDefs map[fortran.Module]Source,
) (map[Source]map[Source]struct{}, error) {
	graph := &dag.AcyclicGraph{}
	for src := range tasks {
		graph.Add(src)
	}
	for src, used := range srcDeps {
		for mod := range used {
			graph.Connect(dag.BasicEdge(src, modDefs[mod]))
		}
	}

	ancestors := make(map[Source]map[Source]struct{}, len(tasks))
	for src := range tasks {
		set, err := graph.Ancestors(src)
		if err != nil {
			return nil, err
		}
		ancs := make(map[Source]struct{}, set.Len())
		for _, v := range set.List() {
			ancs[v.(Source)] = struct{}{}
		}
		ancestors[src] = ancs
	}
	return ancestors, nil
}
