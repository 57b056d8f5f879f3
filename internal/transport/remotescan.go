package transport

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"rsyncsync/internal/manifest"
)

// remoteScanScript returns a POSIX shell pipeline that lists every regular
// file and symlink under root, one per line, as
// "<mtime-epoch>\t<size>\t<type>\t<relative-path>". Running it through a
// single ssh round-trip instead of one stat per file keeps Scan() to one
// network operation regardless of tree size.
func remoteScanScript(root string) string {
	return fmt.Sprintf(
		`cd -- %s && find . \( -type f -o -type l \) -printf '%%T@\t%%s\t%%y\t%%P\n'`,
		shellQuote(root),
	)
}

// parseRemoteScan turns remoteScanScript's output into a Manifest, dropping
// any path matched by excludes.
func parseRemoteScan(output string, excludes []string) manifest.Manifest {
	m := manifest.New()

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", 4)
		if len(fields) != 4 {
			continue
		}

		mtime, kind, relPath := fields[0], fields[2], fields[3]

		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}

		// %T@ is seconds with a fractional part (e.g. "1690000000.5000000000").
		secondsStr := mtime
		if dot := strings.IndexByte(mtime, '.'); dot >= 0 {
			secondsStr = mtime[:dot]
		}

		seconds, err := strconv.ParseInt(secondsStr, 10, 64)
		if err != nil {
			continue
		}

		if isExcluded(relPath, excludes) {
			continue
		}

		entryKind := manifest.KindFile
		if kind == "l" {
			entryKind = manifest.KindSymlink
			// Symlinks carry no comparable content; scanner.go zeroes both
			// fields for the same reason, so the two sides agree.
			seconds, size = 0, 0
		}

		m[relPath] = manifest.Entry{
			Path:  relPath,
			Mtime: seconds,
			Size:  size,
			Kind:  entryKind,
		}
	}

	return m
}

// isExcluded reports whether relPath matches any EXCLUDE_PATTERNS glob,
// tested against both the full relative path and each path segment so a
// pattern like "*.tmp" matches regardless of directory depth. A trailing "/"
// on a pattern is ignored, as in the local scanner.
func isExcluded(relPath string, excludes []string) bool {
	for _, pattern := range excludes {
		pattern = strings.TrimSuffix(pattern, "/")

		if ok, _ := path.Match(pattern, relPath); ok {
			return true
		}

		segments := strings.Split(relPath, "/")
		for _, seg := range segments {
			if ok, _ := path.Match(pattern, seg); ok {
				return true
			}
		}
	}

	return false
}
