// Package digest implements the content-hash function used by the
// Resolver's checksum-verify pre-step to compare file bodies cheaply.
//
// The sync engine has no need for a hash compatible with any specific
// cloud API's content-hash format, unlike the teacher project's own
// pkg/quickxorhash, which exists solely to match OneDrive's QuickXorHash so
// upload integrity can be checked against Graph's response. Grounded
// instead on the schaermu-quadsyncd example's own fileHash
// (internal/sync/sync.go), which streams a file through crypto/sha256 for
// exactly the same "cheaply tell whether two file bodies are identical"
// purpose this project needs, this package wraps sha256.New as a
// hash.Hash so callers keep the New()/Write/Sum interface the rest of the
// tree already depends on.
package digest

import (
	"crypto/sha256"
	"hash"
)

// Size is the length, in bytes, of a digest.
const Size = sha256.Size

// New returns a new hash.Hash computing the sync engine's content digest.
func New() hash.Hash {
	return sha256.New()
}
