// Package resolver collapses CONFLICT actions into an executable action
// (push, pull, or a no-op skip) according to the configured strategy. It is
// grounded in the teacher project's own ConflictHandler
// (internal/sync/conflict.go), simplified from that handler's keep-both,
// rename-and-download behavior to the flat push/pull/skip/backup strategy
// set the sync engine here uses instead.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"rsyncsync/internal/manifest"
	"rsyncsync/internal/transport"
	"rsyncsync/pkg/digest"
)

// Strategy names, matching the CONFLICT_STRATEGY config values exactly.
type Strategy string

const (
	StrategyNewest Strategy = "newest"
	StrategyLocal  Strategy = "local"
	StrategyRemote Strategy = "remote"
	StrategySkip   Strategy = "skip"
	StrategyBackup Strategy = "backup"
)

// ErrUnknownStrategy is returned by Resolve for a CONFLICT_STRATEGY value
// outside the recognized set; config validation should reject this earlier,
// so seeing it here indicates a wiring bug rather than user input.
var ErrUnknownStrategy = errors.New("resolver: unknown conflict strategy")

// Outcome is what the Resolver decided for one CONFLICT action.
type Outcome struct {
	// Action is the concrete action to execute: Push, Pull, or Unchanged
	// (when checksum-verify found the two sides identical). Never Conflict.
	Action manifest.Action

	// Skipped is true for the skip strategy: the caller should record the
	// conflict in the summary without executing Action.
	Skipped bool

	// NeedsBackup is true when the backup strategy applies and the caller
	// (the Executor) must back up both sides before applying Action.
	NeedsBackup bool
}

// Resolver applies CONFLICT_STRATEGY to conflict actions.
type Resolver struct {
	strategy       Strategy
	checksumVerify bool
}

// New returns a Resolver for the given strategy. checksumVerify enables the
// content-digest pre-step described in the specification's Resolver
// section.
func New(strategy Strategy, checksumVerify bool) *Resolver {
	return &Resolver{strategy: strategy, checksumVerify: checksumVerify}
}

// Resolve decides what to do about a CONFLICT action for path p, given the
// local and remote manifest entries. tp is used for the checksum-verify
// pre-step, which reads both file bodies through Open/local os.Open.
func (r *Resolver) Resolve(ctx context.Context, tp transport.Transport, localPath string, local, remote manifest.Entry, path string) (Outcome, error) {
	if r.checksumVerify {
		equal, err := r.contentsEqual(ctx, tp, localPath, path)
		if err != nil {
			return Outcome{}, fmt.Errorf("resolver: checksum-verify for %q: %w", path, err)
		}

		if equal {
			return Outcome{Action: manifest.Action{Type: manifest.Unchanged, Path: path}}, nil
		}
	}

	switch r.strategy {
	case StrategyLocal:
		return Outcome{Action: manifest.Action{Type: manifest.Push, Path: path}}, nil

	case StrategyRemote:
		return Outcome{Action: manifest.Action{Type: manifest.Pull, Path: path}}, nil

	case StrategySkip:
		return Outcome{Skipped: true}, nil

	case StrategyNewest:
		return Outcome{Action: newestAction(local, remote, path)}, nil

	case StrategyBackup:
		return Outcome{Action: newestAction(local, remote, path), NeedsBackup: true}, nil

	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, r.strategy)
	}
}

// newestAction implements the "newest" strategy: the greater mtime wins,
// ties resolve to local (i.e. PUSH).
func newestAction(local, remote manifest.Entry, path string) manifest.Action {
	if remote.Mtime > local.Mtime {
		return manifest.Action{Type: manifest.Pull, Path: path}
	}

	return manifest.Action{Type: manifest.Push, Path: path}
}

// contentsEqual hashes both sides via pkg/digest and compares. A missing
// local or remote file (which should not happen for a genuine CONFLICT,
// since both sides are present in that classification) is treated as
// unequal rather than erroring, so a race with an external mutation
// degrades to "proceed with the strategy" instead of aborting the run.
func (r *Resolver) contentsEqual(ctx context.Context, tp transport.Transport, localPath, remoteRelPath string) (bool, error) {
	localSum, err := sumLocal(localPath)
	if err != nil {
		return false, nil //nolint:nilerr // see doc comment
	}

	remoteReader, err := tp.Open(ctx, remoteRelPath)
	if err != nil {
		return false, nil //nolint:nilerr // see doc comment
	}
	defer remoteReader.Close()

	remoteSum, err := digest.SumReader(remoteReader)
	if err != nil {
		return false, fmt.Errorf("hashing remote content: %w", err)
	}

	return localSum == remoteSum, nil
}
