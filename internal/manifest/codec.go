package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// fieldCount is the number of tab-separated fields per manifest line:
// path, mtime, size, kind.
const fieldCount = 4

// Serialize writes m in its canonical form: one line per entry, fields
// separated by a tab, lines sorted lexicographically by path, each line
// terminated by a newline. An empty manifest serialises to zero bytes.
func Serialize(w io.Writer, m Manifest) error {
	bw := bufio.NewWriter(w)

	for _, path := range m.Paths() {
		e := m[path]

		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\n", e.Path, e.Mtime, e.Size, e.Kind); err != nil {
			return fmt.Errorf("manifest: writing entry %q: %w", path, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("manifest: flushing: %w", err)
	}

	return nil
}

// Parse reads a manifest in its canonical tab-separated form. Blank lines
// are ignored. An empty input is a valid empty manifest.
func Parse(r io.Reader) (Manifest, error) {
	m := New()

	scanner := bufio.NewScanner(r)
	// Manifests can be arbitrarily long for large trees; grow the buffer
	// beyond bufio's default 64KiB line limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if line == "" {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("manifest: line %d: %w", lineNo, err)
		}

		m[entry.Path] = entry
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("manifest: reading: %w", err)
	}

	return m, nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != fieldCount {
		return Entry{}, fmt.Errorf("expected %d tab-separated fields, got %d", fieldCount, len(fields))
	}

	path := fields[0]
	if path == "" {
		return Entry{}, fmt.Errorf("empty path")
	}

	mtime, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid mtime %q: %w", fields[1], err)
	}

	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid size %q: %w", fields[2], err)
	}

	kind := Kind(fields[3])
	if kind != KindFile && kind != KindSymlink {
		return Entry{}, fmt.Errorf("invalid kind %q", fields[3])
	}

	return Entry{Path: path, Mtime: mtime, Size: size, Kind: kind}, nil
}
