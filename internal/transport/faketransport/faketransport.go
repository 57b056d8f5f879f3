// Package faketransport provides an in-memory stand-in for transport.SSHTransport,
// letting the Coordinator, Executor, and Resolver test suites exercise
// real push/pull/delete/scan semantics without shelling out to ssh or
// rsync.
package faketransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"rsyncsync/internal/manifest"
	"rsyncsync/internal/transport"
)

type file struct {
	content []byte
	mtime   int64
	kind    manifest.Kind
}

// Fake is an in-memory remote filesystem implementing transport.Transport.
// It is safe for concurrent use, matching the concurrency the real
// SSHTransport must support under the Executor's bounded fan-out.
type Fake struct {
	mu             sync.Mutex
	files          map[string]file
	clock          int64 // not read or advanced by any operation; PushFile keeps the local file's mtime
	down           bool  // Reachable returns ErrNetwork when true
	missing        bool  // Reachable returns ErrToolMissing when true
	reachableCalls int
}

// New returns an empty Fake remote.
func New() *Fake {
	return &Fake{files: make(map[string]file)}
}

// SetUnreachable makes Reachable and every other operation fail with
// transport.ErrNetwork, simulating a dropped connection.
func (f *Fake) SetUnreachable(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// SetToolMissing makes Reachable fail with transport.ErrToolMissing.
func (f *Fake) SetToolMissing(missing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing = missing
}

// Seed directly installs a file's content and mtime, bypassing PushFile,
// for setting up a test's starting remote state.
func (f *Fake) Seed(relPath string, content []byte, mtime int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[relPath] = file{content: append([]byte{}, content...), mtime: mtime, kind: manifest.KindFile}
}

// Content returns the current bytes stored at relPath, for test assertions.
func (f *Fake) Content(relPath string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff, ok := f.files[relPath]

	return ff.content, ok
}

func (f *Fake) checkUp() error {
	if f.down {
		return &transport.Error{Err: transport.ErrNetwork, Stderr: "fake: remote unreachable"}
	}

	if f.missing {
		return &transport.Error{Err: transport.ErrToolMissing, Stderr: "fake: rsync not found"}
	}

	return nil
}

func (f *Fake) RunRemote(_ context.Context, cmd string) (string, string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkUp(); err != nil {
		return "", "", 0, err
	}

	return "", "", 0, nil
}

func (f *Fake) Reachable(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reachableCalls++

	return f.checkUp()
}

// ReachableCalls returns how many times Reachable has been invoked, for
// tests asserting that a preflight cache actually skips redundant checks.
func (f *Fake) ReachableCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.reachableCalls
}

func (f *Fake) PushFile(_ context.Context, localPath, remoteRelPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return &transport.Error{Err: transport.ErrPath, Stderr: err.Error()}
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return &transport.Error{Err: transport.ErrPath, Stderr: err.Error()}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkUp(); err != nil {
		return err
	}

	f.files[remoteRelPath] = file{content: data, mtime: info.ModTime().Unix(), kind: manifest.KindFile}

	return nil
}

func (f *Fake) PullFile(_ context.Context, remoteRelPath, localPath string) error {
	f.mu.Lock()
	ff, ok := f.files[remoteRelPath]
	upErr := f.checkUp()
	f.mu.Unlock()

	if upErr != nil {
		return upErr
	}

	if !ok {
		return &transport.Error{Err: transport.ErrPath, Stderr: fmt.Sprintf("fake: no such remote file: %s", remoteRelPath)}
	}

	if err := os.MkdirAll(path.Dir(localPath), 0o755); err != nil {
		return &transport.Error{Err: transport.ErrPath, Stderr: err.Error()}
	}

	return os.WriteFile(localPath, ff.content, 0o644)
}

func (f *Fake) DeleteRemote(_ context.Context, remoteRelPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkUp(); err != nil {
		return err
	}

	delete(f.files, remoteRelPath)

	return nil
}

func (f *Fake) CopyRemote(_ context.Context, srcRel, dstRel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkUp(); err != nil {
		return err
	}

	src, ok := f.files[srcRel]
	if !ok {
		return &transport.Error{Err: transport.ErrPath, Stderr: fmt.Sprintf("fake: no such remote file: %s", srcRel)}
	}

	f.files[dstRel] = file{content: append([]byte{}, src.content...), mtime: src.mtime, kind: src.kind}

	return nil
}

func (f *Fake) Scan(_ context.Context, root string, excludes []string) (manifest.Manifest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkUp(); err != nil {
		return nil, err
	}

	m := manifest.New()

	for relPath, ff := range f.files {
		if isExcluded(relPath, excludes) {
			continue
		}

		m[relPath] = manifest.Entry{
			Path:  relPath,
			Mtime: ff.mtime,
			Size:  int64(len(ff.content)),
			Kind:  ff.kind,
		}
	}

	return m, nil
}

func (f *Fake) Open(_ context.Context, remoteRelPath string) (transport.ReadCloser, error) {
	f.mu.Lock()
	ff, ok := f.files[remoteRelPath]
	upErr := f.checkUp()
	f.mu.Unlock()

	if upErr != nil {
		return nil, upErr
	}

	if !ok {
		return nil, &transport.Error{Err: transport.ErrPath, Stderr: fmt.Sprintf("fake: no such remote file: %s", remoteRelPath)}
	}

	return nopCloser{bytes.NewReader(ff.content)}, nil
}

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

func isExcluded(relPath string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := path.Match(pattern, relPath); ok {
			return true
		}
	}

	return false
}

var _ transport.Transport = (*Fake)(nil)
