// Package executor carries out a manifest.ActionList against the local
// filesystem and a transport.Transport, accumulating a Summary of what
// happened. It is grounded in the teacher project's executor family
// (internal/sync/executor.go, executor_transfer.go, executor_delete.go),
// generalized from OneDrive item transfer to the generic
// push/pull/delete/conflict actions this sync engine works with, and
// re-architected per the design notes to return counters from Execute
// rather than mutate package state.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"rsyncsync/internal/manifest"
	"rsyncsync/internal/resolver"
	"rsyncsync/internal/transport"
)

// ErrAction marks a failure that could not be resolved after retries.
var ErrAction = errors.New("executor: action failed")

// Options configures a single Execute call.
type Options struct {
	LocalDir             string
	RemoteDir            string // not read by the Executor; Transport already knows its own root
	MaxRetries           uint64
	RetryDelay           time.Duration
	MaxParallelTransfers int64
	BackupOnConflict     bool
	DryRun               bool
	Resolver             *resolver.Resolver
}

// Summary accumulates per-action counters for one Execute call. It is
// returned by value; during Execute the worker goroutines update it through
// the unexported counters wrapper, whose mutex is never exposed to callers.
type Summary struct {
	Pushed        int
	Pulled        int
	DeletedLocal  int
	DeletedRemote int
	Conflicts     int
	Skipped       int
	Errors        int
}

type counters struct {
	mu sync.Mutex
	Summary
}

func (c *counters) add(f func(*Summary)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f(&c.Summary)
}

// Executor dispatches manifest actions.
type Executor struct {
	tp     transport.Transport
	logger *slog.Logger
	opts   Options
}

// New returns an Executor for the given transport and options.
func New(tp transport.Transport, opts Options, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.MaxParallelTransfers <= 0 {
		opts.MaxParallelTransfers = 4
	}

	return &Executor{tp: tp, logger: logger, opts: opts}
}

// Execute runs every action in actions against local and remote, and
// against local/remote entries taken from the current manifests (needed by
// the Resolver's newest/backup strategies and by DELETE's backup step).
// Actions are dispatched with bounded parallelism; the returned Summary is
// safe to read once every goroutine has completed, i.e. after Execute
// returns.
func (e *Executor) Execute(ctx context.Context, actions manifest.ActionList, local, remote manifest.Manifest) (Summary, error) {
	sorted := append(manifest.ActionList{}, actions...)
	sorted.SortByPath()

	sem := semaphore.NewWeighted(e.opts.MaxParallelTransfers)
	g, gctx := errgroup.WithContext(ctx)
	c := &counters{}

	for _, action := range sorted {
		action := action

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}

		g.Go(func() error {
			defer sem.Release(1)

			e.dispatch(gctx, action, local, remote, c)

			return nil
		})
	}

	_ = g.Wait()

	if c.Summary.Errors > 0 {
		return c.Summary, fmt.Errorf("%w: %d action(s) failed", ErrAction, c.Summary.Errors)
	}

	return c.Summary, nil
}

func (e *Executor) dispatch(ctx context.Context, action manifest.Action, local, remote manifest.Manifest, c *counters) {
	var err error

	switch action.Type {
	case manifest.Push:
		err = e.doPush(ctx, action.Path, false)
		if err == nil {
			c.add(func(s *Summary) { s.Pushed++ })
		}

	case manifest.Pull:
		err = e.doPull(ctx, action.Path, false)
		if err == nil {
			c.add(func(s *Summary) { s.Pulled++ })
		}

	case manifest.DeleteLocal:
		err = e.doDeleteLocal(ctx, action.Path)
		if err == nil {
			c.add(func(s *Summary) { s.DeletedLocal++ })
		}

	case manifest.DeleteRemote:
		err = e.doDeleteRemote(ctx, action.Path)
		if err == nil {
			c.add(func(s *Summary) { s.DeletedRemote++ })
		}

	case manifest.Conflict:
		err = e.doConflict(ctx, action, local, remote, c)

	case manifest.Unchanged:
		// no side effect

	default:
		err = fmt.Errorf("%w: unrecognized action type %v for %q", ErrAction, action.Type, action.Path)
	}

	if err != nil {
		e.logger.Error("executor: action failed", "path", action.Path, "type", action.Type.String(), "error", err)
		c.add(func(s *Summary) { s.Errors++ })
	}
}

// doConflict routes a CONFLICT action through the Resolver, then executes
// whatever concrete action it decides on through the same dispatch path.
func (e *Executor) doConflict(ctx context.Context, action manifest.Action, local, remote manifest.Manifest, c *counters) error {
	localEntry := local[action.Path]
	remoteEntry := remote[action.Path]
	localPath := filepath.Join(e.opts.LocalDir, action.Path)

	outcome, err := e.opts.Resolver.Resolve(ctx, e.tp, localPath, localEntry, remoteEntry, action.Path)
	if err != nil {
		return err
	}

	if outcome.Action.Type == manifest.Unchanged {
		// checksum-verify found the two sides identical: not a genuine
		// conflict, so it does not count as one (spec scenario S5).
		return nil
	}

	c.add(func(s *Summary) { s.Conflicts++ })

	if outcome.Skipped {
		c.add(func(s *Summary) { s.Skipped++ })
		return nil
	}

	if outcome.NeedsBackup && !e.opts.DryRun {
		e.backupBoth(ctx, action.Path)
	}

	switch outcome.Action.Type {
	case manifest.Push:
		if err := e.doPush(ctx, action.Path, e.opts.BackupOnConflict); err != nil {
			return err
		}

		c.add(func(s *Summary) { s.Pushed++ })

	case manifest.Pull:
		if err := e.doPull(ctx, action.Path, e.opts.BackupOnConflict); err != nil {
			return err
		}

		c.add(func(s *Summary) { s.Pulled++ })
	}

	return nil
}

func (e *Executor) doPush(ctx context.Context, relPath string, backup bool) error {
	if e.opts.DryRun {
		e.logger.Info("executor: (dry-run) would push", "path", relPath)
		return nil
	}

	if backup {
		e.backupRemote(ctx, relPath, backupTimestamp())
	}

	localPath := filepath.Join(e.opts.LocalDir, relPath)

	return e.retry(ctx, func() error { return e.tp.PushFile(ctx, localPath, relPath) })
}

func (e *Executor) doPull(ctx context.Context, relPath string, backup bool) error {
	if e.opts.DryRun {
		e.logger.Info("executor: (dry-run) would pull", "path", relPath)
		return nil
	}

	if backup {
		e.backupLocal(relPath, backupTimestamp())
	}

	localPath := filepath.Join(e.opts.LocalDir, relPath)

	return e.retry(ctx, func() error { return e.tp.PullFile(ctx, relPath, localPath) })
}

func (e *Executor) doDeleteLocal(ctx context.Context, relPath string) error {
	if e.opts.DryRun {
		e.logger.Info("executor: (dry-run) would delete local", "path", relPath)
		return nil
	}

	if e.opts.BackupOnConflict {
		e.backupLocal(relPath, backupTimestamp())
	}

	localPath := filepath.Join(e.opts.LocalDir, relPath)

	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing local file %q: %v", ErrAction, relPath, err)
	}

	return nil
}

func (e *Executor) doDeleteRemote(ctx context.Context, relPath string) error {
	if e.opts.DryRun {
		e.logger.Info("executor: (dry-run) would delete remote", "path", relPath)
		return nil
	}

	if e.opts.BackupOnConflict {
		e.backupRemote(ctx, relPath, backupTimestamp())
	}

	return e.retry(ctx, func() error { return e.tp.DeleteRemote(ctx, relPath) })
}

// backupLocal copies the local victim to .sync-backups before it is
// overwritten or removed. Best-effort: a failure is logged but does not
// block the action, per the specification's Backup rule.
func (e *Executor) backupLocal(relPath, timestamp string) {
	src := filepath.Join(e.opts.LocalDir, relPath)

	if _, err := os.Stat(src); err != nil {
		return
	}

	dst := filepath.Join(e.opts.LocalDir, ".sync-backups", relPath+"."+timestamp)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		e.logger.Warn("executor: local backup failed", "path", relPath, "error", err)
		return
	}

	data, err := os.ReadFile(src)
	if err != nil {
		e.logger.Warn("executor: local backup failed", "path", relPath, "error", err)
		return
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		e.logger.Warn("executor: local backup failed", "path", relPath, "error", err)
	}
}

// backupRemote copies the remote victim to .sync-backups on the remote side
// via Transport.CopyRemote. Best-effort, same rationale as backupLocal.
func (e *Executor) backupRemote(ctx context.Context, relPath, timestamp string) {
	dst := ".sync-backups/" + relPath + "." + timestamp

	if err := e.tp.CopyRemote(ctx, relPath, dst); err != nil {
		e.logger.Warn("executor: remote backup failed", "path", relPath, "error", err)
	}
}

// backupBoth backs up both sides' current contents, under the same
// timestamp, before the resolved action overwrites either of them. This is
// the backup strategy's own rule (§4.4: "perform a backup of both sides'
// current contents, then apply newest"), distinct from BACKUP_ON_CONFLICT's
// victim-only backup, which doPush/doPull still apply on top of this for
// non-backup-strategy conflicts.
func (e *Executor) backupBoth(ctx context.Context, relPath string) {
	timestamp := backupTimestamp()
	e.backupLocal(relPath, timestamp)
	e.backupRemote(ctx, relPath, timestamp)
}

func backupTimestamp() string {
	return time.Now().UTC().Format("20060102_150405")
}

// retry wraps op with go-retry's constant backoff, retrying only when op
// returns a transport.ErrNetwork-classified error. transport.ErrPath and
// any non-transport error stop retrying immediately.
func (e *Executor) retry(ctx context.Context, op func() error) error {
	backoff := retry.NewConstant(e.opts.RetryDelay)
	backoff = retry.WithMaxRetries(e.opts.MaxRetries, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op()
		if err == nil {
			return nil
		}

		if errors.Is(err, transport.ErrNetwork) {
			return retry.RetryableError(err)
		}

		return err
	})
}
