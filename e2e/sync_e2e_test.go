//go:build e2e

// Package e2e runs the sync engine against a real SSH remote, configured
// through environment variables (optionally loaded from a .env file). It is
// grounded in the teacher project's e2e suite: build-tagged, skip-if
// unconfigured, real-network integration tests kept out of the default
// `go test ./...` run.
package e2e

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rsyncsync/internal/coordinator"
	"rsyncsync/internal/executor"
	"rsyncsync/internal/resolver"
	"rsyncsync/internal/transport"
	"rsyncsync/testutil"
)

const (
	sshTimeout   = 10 * time.Second
	rsyncTimeout = 5 * time.Minute
)

// TestMain loads .env (if present) before any test decides whether to skip.
func TestMain(m *testing.M) {
	root := testutil.FindModuleRoot(".")
	testutil.LoadDotEnv(filepath.Join(root, ".env"))

	os.Exit(m.Run())
}

func requireRemote(t *testing.T) (host, user string) {
	t.Helper()

	host = os.Getenv("RSYNC_SYNC_E2E_REMOTE_HOST")
	if host == "" {
		t.Skip("RSYNC_SYNC_E2E_REMOTE_HOST not set, skipping e2e test")
	}

	testutil.ValidateAllowlist("RSYNC_SYNC_E2E_REMOTE_HOST")

	user = os.Getenv("RSYNC_SYNC_E2E_REMOTE_USER")

	return host, user
}

// TestSync_PushThenPull_RoundTrips creates a file locally, syncs it to the
// remote, then verifies a second Coordinator against a fresh local
// directory pulls it back down identically.
func TestSync_PushThenPull_RoundTrips(t *testing.T) {
	host, user := requireRemote(t)

	remoteDir := "/tmp/rsync-sync-e2e/" + t.Name()
	localA := t.TempDir()
	localB := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(localA, "hello.txt"), []byte("hello from e2e\n"), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	endpoint := transport.Endpoint{User: user, Host: host, Port: 22}

	tpA := transport.NewSSHTransport(endpoint, remoteDir, filepath.Join(t.TempDir(), "ctlA"), sshTimeout, rsyncTimeout)
	coA := coordinator.New(tpA, logger)

	optsA := coordinator.Options{
		Profile:      "e2e-a",
		LocalDir:     localA,
		RemoteDir:    remoteDir,
		LockPath:     filepath.Join(t.TempDir(), "a.lock"),
		ManifestPath: filepath.Join(t.TempDir(), "a.manifest"),
		Executor:     executor.Options{MaxRetries: 1, MaxParallelTransfers: 2},
		Resolver:     resolver.New(resolver.StrategyNewest, false),
	}

	_, err := coA.Run(context.Background(), optsA)
	require.NoError(t, err)

	tpB := transport.NewSSHTransport(endpoint, remoteDir, filepath.Join(t.TempDir(), "ctlB"), sshTimeout, rsyncTimeout)
	coB := coordinator.New(tpB, logger)

	optsB := optsA
	optsB.Profile = "e2e-b"
	optsB.LocalDir = localB
	optsB.LockPath = filepath.Join(t.TempDir(), "b.lock")
	optsB.ManifestPath = filepath.Join(t.TempDir(), "b.manifest")

	_, err = coB.Run(context.Background(), optsB)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(localB, "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello from e2e\n", string(got))
}
