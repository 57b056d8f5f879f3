package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance bounds "did you mean?" suggestions for unknown
// config keys.
const maxLevenshteinDistance = 3

// knownTopLevelKeys lists state_dir and the option names of the [transport],
// [sync], [hooks] and [logging] sections; it is the candidate set for "did
// you mean?" suggestions. Apart from state_dir these names are not accepted
// as flat top-level keys, because Config decodes them only inside their
// sections.
var knownTopLevelKeys = map[string]bool{
	"state_dir": true,

	"remote_user": true, "remote_host": true, "remote_port": true, "ssh_identity": true,
	"max_retries": true, "retry_delay": true, "ssh_timeout": true, "rsync_timeout": true,
	"bandwidth_limit": true, "max_file_size": true,

	"local_dir": true, "remote_dir": true, "exclude_patterns": true,
	"conflict_strategy": true, "propagate_deletes": true, "backup_on_conflict": true,
	"checksum_verify": true, "max_parallel_transfers": true, "dry_run": true, "verbose": true,

	"on_complete": true, "on_failure": true,

	"log_level": true, "log_format": true, "log_file": true,
}

var knownTopLevelKeysList = func() []string {
	keys := make([]string, 0, len(knownTopLevelKeys))
	for k := range knownTopLevelKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns an
// error with "did you mean?" suggestions for each unknown key. Keys under a
// [profile.<name>...] table are skipped by this check, and TOML decoding
// ignores keys that match no struct field, so an unrecognized key inside a
// profile section is accepted without an error.
func checkUnknownKeys(md *toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}

	var errs []error

	for _, key := range undecoded {
		keyStr := key.String()

		topKey := strings.SplitN(keyStr, ".", 2)[0]
		if topKey == "profile" {
			continue
		}

		if err := buildUnknownKeyError(keyStr); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func buildUnknownKeyError(keyStr string) error {
	parts := strings.SplitN(keyStr, ".", 2)
	fieldName := parts[0]

	if len(parts) > 1 && knownTopLevelKeys[fieldName] {
		return nil
	}

	if suggestion := closestMatch(fieldName, knownTopLevelKeysList); suggestion != "" {
		return fmt.Errorf("unknown config key %q — did you mean %q?", fieldName, suggestion)
	}

	return fmt.Errorf("unknown config key %q", fieldName)
}

// closestMatch finds the closest known key by Levenshtein distance, or ""
// if nothing is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		if d := levenshtein(unknown, k); d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings using a
// single-row optimization to avoid allocating a full matrix.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 0; i < len(a); i++ {
		curr[0] = i + 1

		for j := 0; j < len(b); j++ {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = minOf(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}

	if c < m {
		m = c
	}

	return m
}
