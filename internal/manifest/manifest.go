// Package manifest defines the canonical directory-state snapshot shared by
// the Scanner, Manifest Store, and Differ. A Manifest is the ground truth
// against which the three-way diff classifies every path.
package manifest

import "sort"

// Kind identifies the type of a tracked path.
type Kind string

// Recognised entry kinds. Directories are not tracked; their existence is
// implied by the paths they contain.
const (
	KindFile    Kind = "f"
	KindSymlink Kind = "l"
)

// Entry is a single tracked path and its last-observed metadata.
// Entries are immutable once produced by a scan: a changed file becomes a
// new Entry value, never a mutation of an old one.
type Entry struct {
	Path  string // relative to the sync root, forward slashes, no leading "./"
	Mtime int64  // whole-second POSIX epoch
	Size  int64  // byte length; 0 for symlinks
	Kind  Kind
}

// Equal reports whether two entries are structurally equal: same mtime,
// size, and kind. Path is not compared — callers already know both entries
// refer to the same path when they call Equal.
func (e Entry) Equal(other Entry) bool {
	return e.Mtime == other.Mtime && e.Size == other.Size && e.Kind == other.Kind
}

// Manifest maps a relative path to its Entry. The zero value is a valid
// empty manifest, used for the first-sync case where no previous manifest
// exists yet.
type Manifest map[string]Entry

// New returns an empty Manifest.
func New() Manifest {
	return make(Manifest)
}

// Paths returns the manifest's keys sorted in byte lexicographic order,
// matching the canonical serialised form (§6 of the specification).
func (m Manifest) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

// Clone returns a shallow copy of the manifest. Entry values are immutable
// so a shallow copy is sufficient for callers that need to mutate the map
// without affecting the original.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
