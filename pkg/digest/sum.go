package digest

import (
	"encoding/hex"
	"fmt"
	"io"
)

// SumReader streams r through the digest and returns the hex-encoded sum.
// Used by the Resolver's checksum-verify pre-step to compare two file
// bodies without loading either fully into memory.
func SumReader(r io.Reader) (string, error) {
	h := New()

	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("digest: hashing: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
