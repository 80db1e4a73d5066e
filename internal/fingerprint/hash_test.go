package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.f90")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestFileHashStableAcrossCalls(t *testing.T) {
	path := writeTemp(t, "module m\nend module m\n")

	h1, err := File(path)
	require.NoError(t, err)
	h2, err := File(path)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestSourceHashChangesWithArgs(t *testing.T) {
	path := writeTemp(t, "module m\nend module m\n")

	h1, err := Source(path, []string{"gfortran", "-O2"})
	require.NoError(t, err)
	h2, err := Source(path, []string{"gfortran", "-O3"})
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestSourceHashMatchesFileHashWithoutArgs(t *testing.T) {
	path := writeTemp(t, "module m\nend module m\n")

	fileHash, err := File(path)
	require.NoError(t, err)
	srcHash, err := Source(path, nil)
	require.NoError(t, err)

	require.Equal(t, fileHash, srcHash)
}
