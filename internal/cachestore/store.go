// Package cachestore persists the cross-run hash map (spec.md §4.4) to
// a JSON document on disk. Writes go through github.com/google/renameio
// so a crash mid-write can never leave a half-written cache file behind,
// the same atomic-rename discipline distri's package-store metadata
// uses for its own small JSON/proto sidecar files.
package cachestore

import (
	"encoding/json"
	"os"

	"github.com/google/renameio"

	"github.com/azag0/fcompile/internal/fingerprint"
)

// DefaultFilename is the cache document's default name, written in the
// current working directory.
const DefaultFilename = "_fcompile_cache.json"

type document struct {
	Hashes map[string]fingerprint.Hash `json:"hashes"`
}

// Load reads the cache document at path. A missing file or a malformed
// document is treated as an empty cache, not an error: the cache is
// trusted but disposable, and a corrupt cache at worst costs a
// redundant recompile.
func Load(path string) map[string]fingerprint.Hash {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]fingerprint.Hash{}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil || doc.Hashes == nil {
		return map[string]fingerprint.Hash{}
	}
	return doc.Hashes
}

// Save atomically (over)writes the cache document at path with hashes.
func Save(path string, hashes map[string]fingerprint.Hash) error {
	data, err := json.Marshal(document{Hashes: hashes})
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}
