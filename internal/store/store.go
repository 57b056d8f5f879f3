// Package store implements the Manifest Store: crash-safe persistence and
// loading of the per-profile last-successful-sync manifest, and the merge
// rule used to build the post-sync snapshot.
//
// Grounded on the teacher project's BaselineManager (internal/sync/baseline.go)
// sole-writer pattern, adapted from a SQLite-backed baseline table to the
// specification's flat tab-separated manifest file — the external interface
// (§6) mandates a plain file per profile, not a database, so the durability
// technique (write to a temp file, fsync, atomic rename) is what carries over,
// not the storage engine.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rsyncsync/internal/manifest"
)

// Load reads and parses the manifest file for a profile. A missing file is
// not an error: it returns an empty Manifest, triggering first-sync
// semantics in the Differ.
func Load(path string) (manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return manifest.New(), nil
		}

		return nil, fmt.Errorf("store: opening manifest %s: %w", path, err)
	}
	defer f.Close()

	m, err := manifest.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("store: parsing manifest %s: %w", path, err)
	}

	return m, nil
}

// Save writes m to path atomically: serialise to a sibling temp file in the
// same directory, fsync it, then rename over the destination. A crash
// mid-write leaves either the old manifest intact or the new one complete —
// never a truncated file (specification §4.7, §5 "Shared resources").
func Save(path string, m manifest.Manifest) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: creating state dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: creating temp manifest: %w", err)
	}

	tmpPath := tmp.Name()

	if err := writeAndReplace(tmp, tmpPath, path, m); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

func writeAndReplace(tmp *os.File, tmpPath, finalPath string, m manifest.Manifest) error {
	if err := manifest.Serialize(tmp, m); err != nil {
		tmp.Close()
		return fmt.Errorf("store: serializing manifest: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: syncing temp manifest: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: closing temp manifest: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("store: renaming manifest into place: %w", err)
	}

	return nil
}

// Merge produces the combined post-sync manifest used for persistence: the
// union of local and remote entries, preferring local's entry on overlap
// (they should be equal after a fully successful sync), minus every path
// that was the subject of a DELETE_LOCAL or DELETE_REMOTE action.
//
// Merge is idempotent: calling it again with the same local, remote, and
// actions yields byte-identical output, because it is a pure function of
// its inputs with no hidden state.
func Merge(local, remote manifest.Manifest, actions manifest.ActionList) manifest.Manifest {
	deleted := make(map[string]bool, len(actions))

	for _, a := range actions {
		if a.Type == manifest.DeleteLocal || a.Type == manifest.DeleteRemote {
			deleted[a.Path] = true
		}
	}

	out := manifest.New()

	for path, e := range remote {
		if !deleted[path] {
			out[path] = e
		}
	}

	for path, e := range local {
		if !deleted[path] {
			out[path] = e
		}
	}

	return out
}
