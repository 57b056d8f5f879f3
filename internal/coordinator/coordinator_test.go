package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsyncsync/internal/executor"
	"rsyncsync/internal/lock"
	"rsyncsync/internal/manifest"
	"rsyncsync/internal/resolver"
	"rsyncsync/internal/store"
	"rsyncsync/internal/transport/faketransport"
)

func testOptions(t *testing.T, localDir string) Options {
	t.Helper()

	stateDir := t.TempDir()

	return Options{
		Profile:          "default",
		LocalDir:         localDir,
		RemoteDir:        "/remote",
		PropagateDeletes: true,
		LockPath:         filepath.Join(stateDir, "profile.lock"),
		ManifestPath:     filepath.Join(stateDir, "manifest.tsv"),
		Executor: executor.Options{
			MaxRetries:           1,
			RetryDelay:           time.Millisecond,
			MaxParallelTransfers: 2,
		},
		Resolver: resolver.New(resolver.StrategyNewest, false),
	}
}

func TestRun_FirstSyncPushesNewLocalFile(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("hello"), 0o644))

	fake := faketransport.New()
	c := New(fake, nil)

	report, err := c.Run(context.Background(), testOptions(t, localDir))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Pushed)

	content, ok := fake.Content("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", string(content))
}

func TestRun_PersistsManifestOnSuccess(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("hello"), 0o644))

	fake := faketransport.New()
	opts := testOptions(t, localDir)
	c := New(fake, nil)

	_, err := c.Run(context.Background(), opts)
	require.NoError(t, err)

	m, err := store.Load(opts.ManifestPath)
	require.NoError(t, err)
	assert.Contains(t, m, "a.txt")
}

func TestRun_DryRunDoesNotPersistManifest(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("hello"), 0o644))

	fake := faketransport.New()
	opts := testOptions(t, localDir)
	opts.DryRun = true
	c := New(fake, nil)

	_, err := c.Run(context.Background(), opts)
	require.NoError(t, err)

	m, err := store.Load(opts.ManifestPath)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestStatus_ReportsActionsWithoutExecuting(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("hello"), 0o644))

	fake := faketransport.New()
	c := New(fake, nil)

	actions, err := c.Status(context.Background(), testOptions(t, localDir))
	require.NoError(t, err)

	require.Len(t, actions, 1)
	assert.Equal(t, manifest.Push, actions[0].Type)

	_, ok := fake.Content("a.txt")
	assert.False(t, ok, "status must not execute")
}

func TestResetState_RemovesManifestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.tsv")
	require.NoError(t, store.Save(path, manifest.Manifest{"a.txt": {Path: "a.txt"}}))

	require.NoError(t, ResetState(path))

	m, err := store.Load(path)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestResetState_MissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.tsv")
	assert.NoError(t, ResetState(path))
}

func TestRun_SecondInvocationFailsWhileFirstHoldsLock(t *testing.T) {
	localDir := t.TempDir()
	opts := testOptions(t, localDir)

	l, err := lock.Acquire(opts.LockPath)
	require.NoError(t, err)
	defer l.Release()

	fake := faketransport.New()
	c := New(fake, nil)

	_, err = c.Run(context.Background(), opts)
	assert.Error(t, err)
}

func TestRun_UnreachableTransportFailsPreflight(t *testing.T) {
	localDir := t.TempDir()
	fake := faketransport.New()
	fake.SetUnreachable(true)

	c := New(fake, nil)

	_, err := c.Run(context.Background(), testOptions(t, localDir))
	assert.Error(t, err)
}

func TestRun_ConflictAppliesResolverStrategy(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("local wins"), 0o644))
	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(localDir, "a.txt"), newer, newer))

	fake := faketransport.New()
	fake.Seed("a.txt", []byte("remote content"), time.Now().Add(-time.Hour).Unix())

	opts := testOptions(t, localDir)
	// Seed a prior manifest where both sides had diverged from a common
	// ancestor, forcing CONFLICT classification.
	require.NoError(t, store.Save(opts.ManifestPath, manifest.Manifest{
		"a.txt": {Path: "a.txt", Mtime: 1, Size: 3, Kind: manifest.KindFile},
	}))

	c := New(fake, nil)

	report, err := c.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Pushed)
	assert.Equal(t, 1, report.Summary.Conflicts)

	content, _ := fake.Content("a.txt")
	assert.Equal(t, "local wins", string(content))
}

func TestRun_RemoteVersionCachePersistsAcrossCoordinators(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("hello"), 0o644))

	opts := testOptions(t, localDir)
	opts.RemoteVersionPath = filepath.Join(t.TempDir(), "profile.remote-version")

	fake := faketransport.New()

	// A fresh Coordinator per Run mirrors every real CLI invocation, which
	// never reuses a Coordinator's in-memory lastPreflight field.
	_, err := New(fake, nil).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.ReachableCalls())

	require.NoError(t, os.WriteFile(filepath.Join(localDir, "b.txt"), []byte("world"), 0o644))

	_, err = New(fake, nil).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.ReachableCalls(), "second run within the TTL should reuse the persisted cache")

	_, statErr := os.Stat(opts.RemoteVersionPath)
	require.NoError(t, statErr)
}

func TestRun_RemoteVersionCacheExpiredFileIsRechecked(t *testing.T) {
	localDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("hello"), 0o644))

	opts := testOptions(t, localDir)
	opts.RemoteVersionPath = filepath.Join(t.TempDir(), "profile.remote-version")

	stale := time.Now().Add(-25 * time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, os.WriteFile(opts.RemoteVersionPath, []byte(stale+"\n"), 0o644))

	fake := faketransport.New()

	_, err := New(fake, nil).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.ReachableCalls(), "a stale cache file must not suppress the preflight check")
}
