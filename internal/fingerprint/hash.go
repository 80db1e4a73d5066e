// Package fingerprint computes the content hashes the cache store and
// scheduler use to decide what is dirty, grounded in the teacher's
// cli/internal/fs/hash.go (same sha1-over-a-stream shape, different
// salt).
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hash is a hex-encoded SHA-1 digest.
type Hash string

// File hashes the bytes of path alone, used for produced .mod artifacts.
func File(path string) (Hash, error) {
	return hashPath(path, nil)
}

// Source hashes the command-line arguments that will be used to compile
// path, followed by the file's bytes, so that flipping a compiler flag
// invalidates the cache even when the source text hasn't changed.
func Source(path string, args []string) (Hash, error) {
	return hashPath(path, args)
}

func hashPath(path string, args []string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if args != nil {
		io.WriteString(h, argsKey(args))
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}

// argsKey renders an argument tuple into a stable, self-consistent form.
// The original implementation salts with Python's repr() of the tuple;
// here any canonical separator-joined form works as long as it agrees
// between a cache write and the next run's cache read, which it does
// since both go through this same function.
func argsKey(args []string) string {
	s := fmt.Sprintf("%q", args)
	return s
}
