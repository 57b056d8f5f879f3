package transport

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Error wraps a sentinel error with the command's stderr for debugging,
// the same shape the teacher project's GraphError uses to carry an HTTP
// error body alongside its sentinel (internal/graph/errors.go).
type Error struct {
	Err    error // sentinel, for errors.Is()
	Stderr string
}

func (e *Error) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("%s: %s", e.Err, stderr)
}

func (e *Error) Unwrap() error { return e.Err }

// networkStderrMarkers are stderr substrings from ssh/rsync that indicate a
// transient, retryable failure rather than a permanent one.
var networkStderrMarkers = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"operation timed out",
	"could not resolve hostname",
	"network is unreachable",
	"no route to host",
	"broken pipe",
	"connection unexpectedly closed",
}

// pathStderrMarkers are stderr substrings indicating a failure that retrying
// will not fix.
var pathStderrMarkers = []string{
	"permission denied",
	"no such file or directory",
	"not a directory",
	"disk quota exceeded",
	"no space left on device",
	"read-only file system",
}

// classifyExecErr classifies a failure to even launch or complete a local
// exec.Cmd (missing binary, context cancellation propagated as an error by
// the caller's runCommand).
func classifyExecErr(err error, stderr string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Err: ErrNetwork, Stderr: stderr}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return &Error{Err: ErrToolMissing, Stderr: err.Error()}
	}

	return &Error{Err: ErrNetwork, Stderr: stderr}
}

// classifyExitCode classifies a nonzero ssh/rsync exit code using its
// stderr text, falling back to ErrNetwork (the safer default: an
// unrecognized failure is retried rather than silently treated as
// permanent).
func classifyExitCode(code int, stderr string) error {
	lower := strings.ToLower(stderr)

	for _, marker := range pathStderrMarkers {
		if strings.Contains(lower, marker) {
			return &Error{Err: ErrPath, Stderr: stderr}
		}
	}

	for _, marker := range networkStderrMarkers {
		if strings.Contains(lower, marker) {
			return &Error{Err: ErrNetwork, Stderr: stderr}
		}
	}

	// rsync exit code 23/24 ("partial transfer") without a recognizable
	// path marker is treated as network: likely a dropped connection
	// mid-transfer.
	if code == 23 || code == 24 {
		return &Error{Err: ErrNetwork, Stderr: stderr}
	}

	return &Error{Err: ErrNetwork, Stderr: stderr}
}
