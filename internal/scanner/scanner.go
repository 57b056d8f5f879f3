// Package scanner walks the local filesystem to produce a manifest.Manifest,
// the local-side counterpart to transport.Transport's remote Scan. It is
// grounded in the teacher project's own filesystem walker
// (internal/sync/scanner.go), stripped of the database-diffing behavior
// that lives in internal/differ here instead: this package only observes,
// it never compares against prior state.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"rsyncsync/internal/manifest"
)

// alwaysExcluded subtrees are never part of a sync's data set regardless of
// EXCLUDE_PATTERNS: they hold the engine's own bookkeeping.
var alwaysExcluded = []string{".sync-backups", ".sync-state"}

// ErrScan wraps a failure that aborts the whole walk (a missing or
// unreadable root). Per-entry failures (an unreadable file deeper in the
// tree) are logged and skipped instead, matching the teacher scanner's
// "log a warning, keep walking" behavior.
var ErrScan = errors.New("scanner: scan failed")

// Scanner walks a local directory tree.
type Scanner struct {
	logger *slog.Logger
}

// New returns a Scanner. A nil logger discards scan-time diagnostics.
func New(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(fsDiscard{}, nil))
	}

	return &Scanner{logger: logger}
}

type fsDiscard struct{}

func (fsDiscard) Write(p []byte) (int, error) { return len(p), nil }

// Scan walks root and returns a Manifest of every regular file and symlink
// found, excluding alwaysExcluded subtrees and anything matched by
// excludes. A non-existent root is a ScanError, matching the Transport's
// own root-not-found handling being the boundary between "empty tree" and
// "misconfigured path" (an empty LOCAL_DIR is a config mistake; an empty
// REMOTE_DIR is normal on first sync).
func (s *Scanner) Scan(ctx context.Context, root string, excludes []string) (manifest.Manifest, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScan, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrScan, root)
	}

	m := manifest.New()
	allExcludes := append(append([]string{}, alwaysExcluded...), excludes...)

	err = filepath.WalkDir(root, func(fullPath string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if fullPath == root {
			return nil
		}

		relPath, err := filepath.Rel(root, fullPath)
		if err != nil {
			return fmt.Errorf("%w: computing relative path for %s: %v", ErrScan, fullPath, err)
		}

		relPath = filepath.ToSlash(relPath)
		normalized := normalizePath(relPath)

		if walkErr != nil {
			s.logger.Warn("scanner: cannot read entry, skipping", "path", relPath, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if isExcluded(normalized, allExcludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		entry, ok, err := s.buildEntry(fullPath, normalized, d)
		if err != nil {
			s.logger.Warn("scanner: cannot stat entry, skipping", "path", relPath, "error", err)
			return nil
		}

		if ok {
			m[normalized] = entry
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %v", ErrScan, err)
	}

	return m, nil
}

// buildEntry stats a single directory entry and turns it into a
// manifest.Entry. It returns ok=false for entries that should be silently
// skipped rather than erroring the whole scan (a file removed between
// WalkDir listing it and us stat-ing it).
func (s *Scanner) buildEntry(fullPath, relPath string, d fs.DirEntry) (manifest.Entry, bool, error) {
	if d.Type()&os.ModeSymlink != 0 {
		return manifest.Entry{
			Path:  relPath,
			Mtime: 0,
			Size:  0,
			Kind:  manifest.KindSymlink,
		}, true, nil
	}

	info, err := d.Info()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return manifest.Entry{}, false, nil
		}

		return manifest.Entry{}, false, err
	}

	if !info.Mode().IsRegular() {
		// Devices, sockets, and other special files are not part of a
		// content sync.
		return manifest.Entry{}, false, nil
	}

	return manifest.Entry{
		Path:  relPath,
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
		Kind:  manifest.KindFile,
	}, true, nil
}

// normalizePath applies Unicode NFC normalization to each path segment so a
// filename created as NFD (common on macOS/HFS+) compares equal to its NFC
// form on the other side of the sync.
func normalizePath(relPath string) string {
	segments := strings.Split(relPath, "/")
	for i, seg := range segments {
		segments[i] = norm.NFC.String(seg)
	}

	return strings.Join(segments, "/")
}

// isExcluded reports whether relPath matches any EXCLUDE_PATTERNS glob,
// tested against the full relative path and against each single path
// segment, so a pattern naming a directory matches it at any depth and
// prunes its whole subtree. A trailing "/" on a pattern is ignored.
func isExcluded(relPath string, excludes []string) bool {
	for _, pattern := range excludes {
		trimmed := pattern
		if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '/' {
			trimmed = trimmed[:len(trimmed)-1]
		}

		if ok, _ := path.Match(trimmed, relPath); ok {
			return true
		}

		segments := strings.Split(relPath, "/")
		for _, seg := range segments {
			if ok, _ := path.Match(trimmed, seg); ok {
				return true
			}
		}
	}

	return false
}
