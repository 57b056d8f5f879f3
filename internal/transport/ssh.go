package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rsyncsync/internal/manifest"
)

// Endpoint identifies the remote host and the identity used to reach it.
type Endpoint struct {
	User     string
	Host     string
	Port     int    // defaults to 22
	Identity string // optional private key path
}

// SSHTransport drives the ssh and rsync binaries via os/exec. It is the
// production implementation of Transport; tests use faketransport.Fake
// instead so they don't depend on external binaries.
type SSHTransport struct {
	endpoint      Endpoint
	remoteDir     string
	controlPath   string // ssh ControlMaster socket, enables connection reuse
	sshTimeout    time.Duration
	rsyncTimeout  time.Duration
	bandwidthKBps int // 0 means unlimited
	maxFileSize   int64
	runCommand    func(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// NewSSHTransport builds a Transport against endpoint, rooted at remoteDir.
// controlPath is a per-profile path under the state directory used for the
// ssh ControlMaster socket so repeated RunRemote/PushFile/PullFile calls in
// one Coordinator run reuse a single authenticated connection.
func NewSSHTransport(endpoint Endpoint, remoteDir, controlPath string, sshTimeout, rsyncTimeout time.Duration) *SSHTransport {
	t := &SSHTransport{
		endpoint:     endpoint,
		remoteDir:    remoteDir,
		controlPath:  controlPath,
		sshTimeout:   sshTimeout,
		rsyncTimeout: rsyncTimeout,
	}
	t.runCommand = t.execCommand

	return t
}

// SetBandwidthLimit configures rsync's --bwlimit in KB/s. 0 means
// unlimited.
func (t *SSHTransport) SetBandwidthLimit(kbps int) { t.bandwidthKBps = kbps }

// SetMaxFileSize configures rsync's --max-size in bytes. 0 means unlimited.
func (t *SSHTransport) SetMaxFileSize(bytes int64) { t.maxFileSize = bytes }

func (t *SSHTransport) port() int {
	if t.endpoint.Port == 0 {
		return 22
	}

	return t.endpoint.Port
}

// sshArgs returns the base ssh(1) arguments shared by control commands and
// as the -e argument to rsync.
func (t *SSHTransport) sshArgs() []string {
	args := []string{
		"-p", strconv.Itoa(t.port()),
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(t.sshTimeout.Seconds())),
	}

	if t.controlPath != "" {
		args = append(args,
			"-o", "ControlMaster=auto",
			"-o", "ControlPersist="+t.sshTimeout.String(),
			"-o", "ControlPath="+t.controlPath,
		)
	}

	if t.endpoint.Identity != "" {
		args = append(args, "-i", t.endpoint.Identity)
	}

	return args
}

func (t *SSHTransport) userHost() string {
	return t.endpoint.User + "@" + t.endpoint.Host
}

// RunRemote executes cmd on the remote under the configured identity.
func (t *SSHTransport) RunRemote(ctx context.Context, cmd string) (string, string, int, error) {
	args := append(append([]string{}, t.sshArgs()...), t.userHost(), cmd)

	return t.runCommand(ctx, "ssh", args...)
}

// Reachable verifies the remote accepts a connection and rsync is present.
func (t *SSHTransport) Reachable(ctx context.Context) error {
	stdout, stderr, code, err := t.RunRemote(ctx, "command -v rsync && mkdir -p "+shellQuote(t.remoteDir))
	if err != nil {
		return classifyExecErr(err, stderr)
	}

	if code != 0 {
		// ssh exits 255 for its own connection failures; any other nonzero
		// exit with nothing printed by `command -v` means rsync is missing.
		if code != 255 && strings.TrimSpace(stdout) == "" {
			return fmt.Errorf("%w: rsync not found on remote", ErrToolMissing)
		}

		return classifyExitCode(code, stderr)
	}

	return nil
}

// PushFile copies localPath to REMOTE_DIR/remoteRelPath, creating the
// remote parent directory first so a first push into a new subdirectory of
// a fresh remote tree succeeds.
func (t *SSHTransport) PushFile(ctx context.Context, localPath, remoteRelPath string) error {
	remotePath := path.Join(t.remoteDir, remoteRelPath)

	_, stderr, code, err := t.RunRemote(ctx, "mkdir -p -- "+shellQuote(path.Dir(remotePath)))
	if err != nil {
		return classifyExecErr(err, stderr)
	}

	if code != 0 {
		return classifyExitCode(code, stderr)
	}

	dest := fmt.Sprintf("%s:%s", t.userHost(), shellQuote(remotePath))

	return t.rsync(ctx, localPath, dest)
}

// PullFile copies REMOTE_DIR/remoteRelPath to localPath.
func (t *SSHTransport) PullFile(ctx context.Context, remoteRelPath, localPath string) error {
	src := fmt.Sprintf("%s:%s", t.userHost(), shellQuote(path.Join(t.remoteDir, remoteRelPath)))

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("%w: creating local parent directory: %v", ErrPath, err)
	}

	return t.rsync(ctx, src, localPath)
}

// rsync invokes rsync(1) with flags chosen for partial-transfer resumption:
// --partial keeps a partially transferred file instead of deleting it, so a
// retried PushFile/PullFile continues rather than restarting.
func (t *SSHTransport) rsync(ctx context.Context, src, dst string) error {
	args := []string{
		"-az", "--partial", "--times",
		"-e", "ssh " + strings.Join(t.sshArgs(), " "),
	}

	if t.bandwidthKBps > 0 {
		args = append(args, fmt.Sprintf("--bwlimit=%d", t.bandwidthKBps))
	}

	if t.maxFileSize > 0 {
		args = append(args, fmt.Sprintf("--max-size=%d", t.maxFileSize))
	}

	args = append(args, src, dst)

	_, stderr, code, err := t.runCommand(ctx, "rsync", args...)
	if err != nil {
		return classifyExecErr(err, stderr)
	}

	if code != 0 {
		return classifyExitCode(code, stderr)
	}

	return nil
}

// DeleteRemote removes remoteRelPath if present. Absence is not an error.
func (t *SSHTransport) DeleteRemote(ctx context.Context, remoteRelPath string) error {
	full := path.Join(t.remoteDir, remoteRelPath)
	_, stderr, code, err := t.RunRemote(ctx, "rm -f -- "+shellQuote(full))

	if err != nil {
		return classifyExecErr(err, stderr)
	}

	if code != 0 {
		return classifyExitCode(code, stderr)
	}

	return nil
}

// CopyRemote copies srcRel to dstRel entirely on the remote side, used for
// remote-side backup staging (specification §4.5 "Backup").
func (t *SSHTransport) CopyRemote(ctx context.Context, srcRel, dstRel string) error {
	src := path.Join(t.remoteDir, srcRel)
	dst := path.Join(t.remoteDir, dstRel)
	cmd := fmt.Sprintf("mkdir -p -- %s && cp -a -- %s %s", shellQuote(path.Dir(dst)), shellQuote(src), shellQuote(dst))

	_, stderr, code, err := t.RunRemote(ctx, cmd)
	if err != nil {
		return classifyExecErr(err, stderr)
	}

	if code != 0 {
		return classifyExitCode(code, stderr)
	}

	return nil
}

// Scan produces a Manifest of the remote directory tree via a find/stat
// pipeline over ssh, the same approach the specification's design notes
// (§9) cite as the reference implementation's technique.
func (t *SSHTransport) Scan(ctx context.Context, root string, excludes []string) (manifest.Manifest, error) {
	script := remoteScanScript(root)

	stdout, stderr, code, err := t.RunRemote(ctx, script)
	if err != nil {
		return nil, classifyExecErr(err, stderr)
	}

	if code != 0 {
		// A non-existent remote root is not an error: the Coordinator will
		// create it on first push (specification §4.2).
		if strings.Contains(stderr, "No such file or directory") {
			return manifest.New(), nil
		}

		return nil, classifyExitCode(code, stderr)
	}

	return parseRemoteScan(stdout, excludes), nil
}

// Open streams the current content of remoteRelPath via ssh cat, used by
// the checksum-verify pre-step.
func (t *SSHTransport) Open(ctx context.Context, remoteRelPath string) (ReadCloser, error) {
	full := path.Join(t.remoteDir, remoteRelPath)
	args := append(append([]string{}, t.sshArgs()...), t.userHost(), "cat -- "+shellQuote(full))

	cmd := exec.CommandContext(ctx, "ssh", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("transport: opening remote read pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, classifyExecErr(err, "")
	}

	return &remoteReadCloser{cmd: cmd, stdout: stdout}, nil
}

type remoteReadCloser struct {
	cmd    *exec.Cmd
	stdout interface {
		Read(p []byte) (int, error)
	}
}

func (r *remoteReadCloser) Read(p []byte) (int, error) { return r.stdout.Read(p) }
func (r *remoteReadCloser) Close() error               { return r.cmd.Wait() }

func (t *SSHTransport) execCommand(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
		err = nil
	}

	return stdout.String(), stderr.String(), exitCode, err
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
