// Package coordinator drives the lifecycle of a single sync invocation:
// lock, preflight, scan, diff, execute, persist, unlock, report. It is
// grounded in the teacher project's Orchestrator/Engine split
// (internal/sync/orchestrator.go, engine.go), collapsed here into a single
// type because this sync engine has one remote per profile rather than the
// teacher's multi-drive fan-out — the per-run bookkeeping (locking, signal
// handling, hooks, reporting) is the part worth keeping, not the
// multi-drive concurrency the teacher needed and this engine does not.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rsyncsync/internal/differ"
	"rsyncsync/internal/executor"
	"rsyncsync/internal/lock"
	"rsyncsync/internal/manifest"
	"rsyncsync/internal/resolver"
	"rsyncsync/internal/scanner"
	"rsyncsync/internal/store"
	"rsyncsync/internal/transport"
)

// ErrInterrupted and ErrTerminated are returned by Run when the process
// received SIGINT/SIGTERM mid-run; main.go maps these to the conventional
// 130/143 exit codes.
var (
	ErrInterrupted = errors.New("coordinator: interrupted (SIGINT)")
	ErrTerminated  = errors.New("coordinator: terminated (SIGTERM)")
)

// remoteVersionCacheTTL bounds how often the Coordinator re-verifies the
// remote transfer tool during preflight.
const remoteVersionCacheTTL = 24 * time.Hour

// Options configures one Run.
type Options struct {
	Profile           string
	LocalDir          string
	RemoteDir         string
	ExcludePatterns   []string
	PropagateDeletes  bool
	DryRun            bool
	LockPath          string
	ManifestPath      string
	RemoteVersionPath string
	OnComplete        string
	OnFailure         string

	Executor executor.Options
	Resolver *resolver.Resolver
}

// Report is what Run returns: the classified actions (useful for the
// status command, which stops before Execute) and, once execution has run,
// the resulting Summary.
type Report struct {
	Actions manifest.ActionList
	Summary executor.Summary
}

// Coordinator runs sync invocations against a single Transport.
type Coordinator struct {
	tp      transport.Transport
	logger  *slog.Logger
	scanner *scanner.Scanner

	preflightMu   sync.Mutex
	lastPreflight time.Time
}

// New returns a Coordinator for the given transport.
func New(tp transport.Transport, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{tp: tp, logger: logger, scanner: scanner.New(logger)}
}

// Run executes the full nine-step lifecycle: lock, preflight, scan, load,
// diff, execute, persist, unlock, report.
func (c *Coordinator) Run(parent context.Context, opts Options) (Report, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sigErrCh := make(chan error, 1)

	go func() {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGTERM {
				sigErrCh <- ErrTerminated
			} else {
				sigErrCh <- ErrInterrupted
			}

			cancel()
		case <-ctx.Done():
			sigErrCh <- nil
		}
	}()

	l, err := lock.Acquire(opts.LockPath)
	if err != nil {
		return Report{}, err
	}
	defer l.Release()

	report, runErr := c.runLocked(ctx, opts)

	cancel() // unblocks the signal-watcher goroutine if no signal arrived

	if sigErr := <-sigErrCh; sigErr != nil {
		runErr = sigErr
	}

	c.runHook(context.WithoutCancel(parent), opts, report.Summary, runErr)

	return report, runErr
}

func (c *Coordinator) runLocked(ctx context.Context, opts Options) (Report, error) {
	if err := c.preflight(ctx, opts.RemoteVersionPath); err != nil {
		return Report{}, fmt.Errorf("coordinator: preflight: %w", err)
	}

	local, remote, err := c.scanBoth(ctx, opts)
	if err != nil {
		return Report{}, err
	}

	prev, err := store.Load(opts.ManifestPath)
	if err != nil {
		return Report{}, fmt.Errorf("coordinator: loading manifest: %w", err)
	}

	actions := differ.Diff(prev, local, remote, opts.PropagateDeletes)

	execOpts := opts.Executor
	execOpts.LocalDir = opts.LocalDir
	execOpts.RemoteDir = opts.RemoteDir
	execOpts.DryRun = opts.DryRun
	execOpts.Resolver = opts.Resolver

	exe := executor.New(c.tp, execOpts, c.logger)

	summary, execErr := exe.Execute(ctx, actions, local, remote)
	report := Report{Actions: actions, Summary: summary}

	if execErr == nil && !opts.DryRun {
		if err := c.persist(ctx, opts); err != nil {
			c.logger.Error("coordinator: persisting manifest failed", "error", err)
			return report, err
		}
	}

	return report, execErr
}

// Status runs steps 1(without locking), 4, 5, 6 only: scan, load, diff, and
// returns the classified actions without executing them.
func (c *Coordinator) Status(ctx context.Context, opts Options) (manifest.ActionList, error) {
	local, remote, err := c.scanBoth(ctx, opts)
	if err != nil {
		return nil, err
	}

	prev, err := store.Load(opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("coordinator: loading manifest: %w", err)
	}

	actions := differ.Diff(prev, local, remote, opts.PropagateDeletes)
	actions.SortByPath()

	return actions, nil
}

// ResetState deletes the manifest file for a profile, so the next run is
// treated as a first sync.
func ResetState(manifestPath string) error {
	if err := os.Remove(manifestPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("coordinator: removing manifest: %w", err)
	}

	return nil
}

// scanBoth runs the local and remote scans concurrently through an
// errgroup.Group, matching the fan-out pattern the Executor uses for its
// own bounded parallelism (§5).
func (c *Coordinator) scanBoth(ctx context.Context, opts Options) (local, remote manifest.Manifest, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := c.scanner.Scan(gctx, opts.LocalDir, opts.ExcludePatterns)
		if err != nil {
			return fmt.Errorf("coordinator: scanning local: %w", err)
		}

		local = m

		return nil
	})

	g.Go(func() error {
		m, err := c.tp.Scan(gctx, opts.RemoteDir, opts.ExcludePatterns)
		if err != nil {
			return fmt.Errorf("coordinator: scanning remote: %w", err)
		}

		remote = m

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return local, remote, nil
}

func (c *Coordinator) persist(ctx context.Context, opts Options) error {
	local, remote, err := c.scanBoth(ctx, opts)
	if err != nil {
		return fmt.Errorf("post-sync rescan: %w", err)
	}

	prev, err := store.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	actions := differ.Diff(prev, local, remote, opts.PropagateDeletes)
	merged := store.Merge(local, remote, actions)

	return store.Save(opts.ManifestPath, merged)
}

// preflight verifies Transport reachability, caching a successful check for
// remoteVersionCacheTTL so repeated invocations in short succession don't
// pay a round-trip on every run. lastPreflight only helps repeat calls
// within one process; every real CLI invocation builds a fresh Coordinator,
// so versionPath (when non-empty) persists the same check to disk and is
// what actually makes the cache survive across invocations.
func (c *Coordinator) preflight(ctx context.Context, versionPath string) error {
	c.preflightMu.Lock()
	fresh := time.Since(c.lastPreflight) < remoteVersionCacheTTL
	c.preflightMu.Unlock()

	if !fresh && versionPath != "" {
		if cached, err := readRemoteVersion(versionPath); err == nil {
			fresh = time.Since(cached) < remoteVersionCacheTTL
		}
	}

	if fresh {
		return nil
	}

	if err := c.tp.Reachable(ctx); err != nil {
		return err
	}

	now := time.Now()

	c.preflightMu.Lock()
	c.lastPreflight = now
	c.preflightMu.Unlock()

	if versionPath != "" {
		if err := writeRemoteVersion(versionPath, now); err != nil {
			c.logger.Warn("coordinator: could not persist remote-version cache", "path", versionPath, "error", err)
		}
	}

	return nil
}

// readRemoteVersion returns the timestamp of the last successful preflight
// check recorded at path.
func readRemoteVersion(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}

	return time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
}

// writeRemoteVersion records when as the timestamp of the most recent
// successful preflight check at path.
func writeRemoteVersion(path string, when time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(when.UTC().Format(time.RFC3339)+"\n"), 0o644)
}

// runHook invokes ON_COMPLETE or ON_FAILURE depending on the outcome,
// exposing the run summary as environment variables. Hook failures are
// logged only; they never change the run's own exit status.
func (c *Coordinator) runHook(ctx context.Context, opts Options, summary executor.Summary, runErr error) {
	hook := opts.OnComplete
	if runErr != nil {
		hook = opts.OnFailure
	}

	if hook == "" {
		return
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", hook)
	cmd.Env = append(os.Environ(),
		"RSYNC_SYNC_PUSHED="+strconv.Itoa(summary.Pushed),
		"RSYNC_SYNC_PULLED="+strconv.Itoa(summary.Pulled),
		"RSYNC_SYNC_DELETED_LOCAL="+strconv.Itoa(summary.DeletedLocal),
		"RSYNC_SYNC_DELETED_REMOTE="+strconv.Itoa(summary.DeletedRemote),
		"RSYNC_SYNC_CONFLICTS="+strconv.Itoa(summary.Conflicts),
		"RSYNC_SYNC_ERRORS="+strconv.Itoa(summary.Errors),
	)

	if err := cmd.Run(); err != nil {
		c.logger.Warn("coordinator: hook command failed", "hook", hook, "error", err)
	}
}
