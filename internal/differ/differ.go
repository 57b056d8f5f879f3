// Package differ implements the three-way diff over previous, local, and
// remote manifests, classifying every path into exactly one Action.
//
// The algorithm is a pure function over three maps — no I/O, no side
// effects — grounded in the same shape as a two-way sync differ (compare
// local against remote, emit upload/download/delete), extended with the
// previous manifest as a third reference point so deletions can be told
// apart from one-sided creations (the "safe deletion" rule).
package differ

import "rsyncsync/internal/manifest"

// Diff classifies every path appearing in any of prev, local, or remote
// into a single Action, per the presence-pattern table in the
// specification. propagateDeletes controls whether a path missing from one
// side but present in prev is treated as a deletion to propagate or as an
// unintentional loss to restore (PUSH/PULL).
func Diff(prev, local, remote manifest.Manifest, propagateDeletes bool) manifest.ActionList {
	paths := unionKeys(prev, local, remote)

	actions := make(manifest.ActionList, 0, len(paths))

	for path := range paths {
		if a, ok := classify(path, prev, local, remote, propagateDeletes); ok {
			actions = append(actions, a)
		}
	}

	actions.SortByPath()

	return actions
}

func classify(
	path string, prev, local, remote manifest.Manifest, propagateDeletes bool,
) (manifest.Action, bool) {
	p, hasPrev := prev[path]
	l, hasLocal := local[path]
	r, hasRemote := remote[path]

	switch {
	case hasPrev && hasLocal && hasRemote:
		return classifyAllThree(path, p, l, r), true
	case !hasPrev && hasLocal && hasRemote:
		return classifyNewOnBoth(path, l, r), true
	case !hasPrev && hasLocal && !hasRemote:
		return manifest.Action{Type: manifest.Push, Path: path}, true
	case !hasPrev && !hasLocal && hasRemote:
		return manifest.Action{Type: manifest.Pull, Path: path}, true
	case hasPrev && hasLocal && !hasRemote:
		return classifyDeletedRemote(path, propagateDeletes), true
	case hasPrev && !hasLocal && hasRemote:
		return classifyDeletedLocal(path, propagateDeletes), true
	default:
		// hasPrev && !hasLocal && !hasRemote: deleted on both sides, nothing to do.
		return manifest.Action{}, false
	}
}

func classifyAllThree(path string, p, l, r manifest.Entry) manifest.Action {
	localChanged := !l.Equal(p)
	remoteChanged := !r.Equal(p)

	switch {
	case !localChanged && !remoteChanged:
		return manifest.Action{Type: manifest.Unchanged, Path: path}
	case localChanged && !remoteChanged:
		return manifest.Action{Type: manifest.Push, Path: path}
	case !localChanged && remoteChanged:
		return manifest.Action{Type: manifest.Pull, Path: path}
	case l.Equal(r):
		return manifest.Action{Type: manifest.Unchanged, Path: path}
	default:
		return manifest.Action{Type: manifest.Conflict, Path: path}
	}
}

func classifyNewOnBoth(path string, l, r manifest.Entry) manifest.Action {
	if l.Equal(r) {
		return manifest.Action{Type: manifest.Unchanged, Path: path}
	}

	return manifest.Action{Type: manifest.Conflict, Path: path}
}

// classifyDeletedRemote handles P=1,L=1,R=0: the path was removed remotely
// while local still has it.
func classifyDeletedRemote(path string, propagateDeletes bool) manifest.Action {
	if propagateDeletes {
		return manifest.Action{Type: manifest.DeleteLocal, Path: path}
	}

	return manifest.Action{Type: manifest.Push, Path: path}
}

// classifyDeletedLocal handles P=1,L=0,R=1: the path was removed locally
// while remote still has it.
func classifyDeletedLocal(path string, propagateDeletes bool) manifest.Action {
	if propagateDeletes {
		return manifest.Action{Type: manifest.DeleteRemote, Path: path}
	}

	return manifest.Action{Type: manifest.Pull, Path: path}
}

func unionKeys(manifests ...manifest.Manifest) map[string]struct{} {
	keys := make(map[string]struct{})

	for _, m := range manifests {
		for k := range m {
			keys[k] = struct{}{}
		}
	}

	return keys
}
