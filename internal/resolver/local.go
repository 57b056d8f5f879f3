package resolver

import (
	"fmt"
	"os"

	"rsyncsync/pkg/digest"
)

// sumLocal hashes the file at localPath through pkg/digest.
func sumLocal(localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening local file: %w", err)
	}
	defer f.Close()

	return digest.SumReader(f)
}
