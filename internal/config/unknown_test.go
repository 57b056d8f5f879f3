package config

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMeta(t *testing.T, data string) *toml.MetaData {
	t.Helper()

	var cfg Config

	md, err := toml.Decode(data, &cfg)
	require.NoError(t, err)

	return &md
}

func TestCheckUnknownKeys_RejectsTypo(t *testing.T) {
	md := decodeMeta(t, `remote_hots = "example.com"`)

	err := checkUnknownKeys(md)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean")
	assert.Contains(t, err.Error(), "remote_host")
}

func TestCheckUnknownKeys_AcceptsKnownKeys(t *testing.T) {
	md := decodeMeta(t, `
[transport]
remote_host = "example.com"

[sync]
conflict_strategy = "newest"
`)

	assert.NoError(t, checkUnknownKeys(md))
}

func TestCheckUnknownKeys_SkipsProfileSections(t *testing.T) {
	md := decodeMeta(t, `
[profile.work.transport]
remote_host = "example.com"
`)

	assert.NoError(t, checkUnknownKeys(md))
}

func TestLevenshtein_IdenticalStringsAreZero(t *testing.T) {
	assert.Equal(t, 0, levenshtein("remote_host", "remote_host"))
}

func TestClosestMatch_ReturnsEmptyBeyondThreshold(t *testing.T) {
	got := closestMatch(strings.Repeat("z", 20), knownTopLevelKeysList)
	assert.Empty(t, got)
}
