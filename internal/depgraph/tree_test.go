package depgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azag0/fcompile/internal/fortran"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestBuildSimpleChain(t *testing.T) {
	dir := t.TempDir()
	aPath := writeSource(t, dir, "a.f90", "module m\nend module m\n")
	bPath := writeSource(t, dir, "b.f90", "use m\nprogram p\nend program p\n")

	tasks := map[Source]Task{
		"a": {SourcePath: aPath, Args: []string{"gfortran", "-c"}},
		"b": {SourcePath: bPath, Args: []string{"gfortran", "-c"}},
	}

	tree, err := Build(tasks)
	require.NoError(t, err)

	assert.Equal(t, []fortran.Module{"m"}, tree.SrcMods["a"])
	assert.Equal(t, []Source{"b"}, tree.ModUses["m"])
	assert.Contains(t, tree.Ancestors["b"], Source("a"))
	assert.NotContains(t, tree.Ancestors["a"], Source("b"))
	assert.GreaterOrEqual(t, tree.Priority["a"], 1)
	assert.GreaterOrEqual(t, tree.Priority["b"], 1)
	assert.Greater(t, tree.Priority["a"], tree.Priority["b"])
}

func TestBuildIsoCBindingDropsEdge(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "c.f90", "use iso_c_binding\nend\n")

	tasks := map[Source]Task{
		"c": {SourcePath: path, Args: []string{"gfortran"}},
	}

	tree, err := Build(tasks)
	require.NoError(t, err)
	assert.Empty(t, tree.ModUses)
	assert.Empty(t, tree.Ancestors["c"])
}

func TestBuildMPIDroppedWhenUndefined(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "c.f90", "use mpi\nend\n")

	tasks := map[Source]Task{
		"c": {SourcePath: path, Args: []string{"gfortran"}},
	}

	tree, err := Build(tasks)
	require.NoError(t, err)
	assert.Empty(t, tree.ModUses)
}

func TestBuildMPIKeptWhenDefined(t *testing.T) {
	dir := t.TempDir()
	mpiPath := writeSource(t, dir, "mpi.f90", "module mpi\nend module mpi\n")
	usePath := writeSource(t, dir, "c.f90", "use mpi\nend\n")

	tasks := map[Source]Task{
		"mpi_mod": {SourcePath: mpiPath, Args: []string{"gfortran"}},
		"c":       {SourcePath: usePath, Args: []string{"gfortran"}},
	}

	tree, err := Build(tasks)
	require.NoError(t, err)
	assert.Contains(t, tree.Ancestors["c"], Source("mpi_mod"))
}

func TestBuildDuplicateModuleDefinitionErrors(t *testing.T) {
	dir := t.TempDir()
	aPath := writeSource(t, dir, "a.f90", "module x\nend module x\n")
	bPath := writeSource(t, dir, "b.f90", "module x\nend module x\n")

	tasks := map[Source]Task{
		"a": {SourcePath: aPath, Args: []string{"gfortran"}},
		"b": {SourcePath: bPath, Args: []string{"gfortran"}},
	}

	_, err := Build(tasks)
	require.Error(t, err)
	var dupErr *ModuleMultipleDefined
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "x", dupErr.Module)
}

func TestBuildUndefinedModuleErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "c.f90", "use nonexistent\nend\n")

	tasks := map[Source]Task{
		"c": {SourcePath: path, Args: []string{"gfortran"}},
	}

	_, err := Build(tasks)
	require.Error(t, err)
	var notDefErr *ModuleNotDefined
	require.ErrorAs(t, err, &notDefErr)
	assert.Equal(t, "nonexistent", notDefErr.Module)
}

func TestBuildIncludeDirSatisfiesUse(t *testing.T) {
	dir := t.TempDir()
	incDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(incDir, "external.mod"), []byte("prebuilt"), 0o644))

	path := writeSource(t, dir, "c.f90", "use external\nend\n")

	tasks := map[Source]Task{
		"c": {SourcePath: path, Args: []string{"gfortran"}, Includes: []string{incDir}},
	}

	tree, err := Build(tasks)
	require.NoError(t, err)
	assert.Empty(t, tree.ModUses)
}

func TestPriorityMonotoneAlongAncestorEdge(t *testing.T) {
	dir := t.TempDir()
	aPath := writeSource(t, dir, "a.f90", "module m\nend module m\n")
	bPath := writeSource(t, dir, "b.f90", "use m\nmodule n\nend module n\n")
	cPath := writeSource(t, dir, "c.f90", "use n\nend\n")

	tasks := map[Source]Task{
		"a": {SourcePath: aPath, Args: nil},
		"b": {SourcePath: bPath, Args: nil},
		"c": {SourcePath: cPath, Args: nil},
	}

	tree, err := Build(tasks)
	require.NoError(t, err)

	for src, p := range tree.Priority {
		assert.GreaterOrEqual(t, p, 1, "priority of %s", src)
	}
	assert.Greater(t, tree.Priority["a"], tree.Priority["b"])
	assert.Greater(t, tree.Priority["b"], tree.Priority["c"])
}
