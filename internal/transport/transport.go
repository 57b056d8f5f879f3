// Package transport provides the narrow interface the sync engine needs
// against the remote endpoint, and an implementation that drives the ssh
// and rsync binaries via os/exec — mirroring the reference tool's approach
// of shelling out to a transfer utility rather than reimplementing a wire
// protocol (specification §9 design notes, "an abstract Transport
// interface").
package transport

import (
	"context"
	"errors"

	"rsyncsync/internal/manifest"
)

// Sentinel errors for classifying Transport failures, following the same
// errors.Is-compatible classification the teacher project uses for its
// Graph API client (internal/graph/errors.go), adapted from HTTP status
// codes to ssh/rsync exit-code and stderr classification.
var (
	// ErrNetwork marks a failure the Executor should retry: connection
	// refused, timeout, DNS failure, transient rsync protocol error.
	ErrNetwork = errors.New("transport: network error")

	// ErrPath marks a failure the Executor must not retry: permission
	// denied, no such file or directory, remote quota exceeded.
	ErrPath = errors.New("transport: path error")

	// ErrToolMissing indicates the remote lacks the transfer binary
	// (rsync) required for PushFile/PullFile/CopyRemote.
	ErrToolMissing = errors.New("transport: transfer tool not found on remote")
)

// Transport is the interface the sync engine depends on for all remote
// operations. The core never talks to ssh/rsync directly — it depends on
// this interface (accept-interfaces, return-structs), so tests can
// substitute an in-memory fake (see faketransport).
type Transport interface {
	// RunRemote executes cmd on the remote under the configured identity
	// and returns its stdout, stderr, and exit code.
	RunRemote(ctx context.Context, cmd string) (stdout, stderr string, exitCode int, err error)

	// Reachable verifies the remote accepts a connection and that the
	// file-transfer binary is present.
	Reachable(ctx context.Context) error

	// PushFile copies localPath to REMOTE_DIR/remoteRelPath, creating
	// parent directories and preserving mtime. Resumable on retry after a
	// partial transfer.
	PushFile(ctx context.Context, localPath, remoteRelPath string) error

	// PullFile is the symmetric counterpart of PushFile.
	PullFile(ctx context.Context, remoteRelPath, localPath string) error

	// DeleteRemote removes remoteRelPath if present. Absence is not an
	// error.
	DeleteRemote(ctx context.Context, remoteRelPath string) error

	// CopyRemote copies srcRel to dstRel on the remote side, used for
	// remote-side backup staging.
	CopyRemote(ctx context.Context, srcRel, dstRel string) error

	// Scan produces a Manifest of the remote directory tree, applying the
	// given exclusion patterns. A non-existent remote root yields an
	// empty Manifest rather than an error.
	Scan(ctx context.Context, root string, excludes []string) (manifest.Manifest, error)

	// Open returns a reader over the current content of remoteRelPath,
	// used by the Resolver's checksum-verify pre-step to hash the remote
	// side without a full PullFile.
	Open(ctx context.Context, remoteRelPath string) (ReadCloser, error)
}

// ReadCloser is io.ReadCloser, restated here so callers of this package
// don't need a separate import for the common case of reading remote
// content for hashing.
type ReadCloser interface {
	Read(p []byte) (n int, err error)
	Close() error
}
