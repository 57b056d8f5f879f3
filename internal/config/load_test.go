package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_ParsesWellFormedConfig(t *testing.T) {
	path := writeConfigFile(t, `
[profile.default.transport]
remote_host = "example.com"

[profile.default.sync]
local_dir = "/home/me/project"
remote_dir = "/srv/project"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Profiles, "default")
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	path := writeConfigFile(t, `remote_hots = "example.com"`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
[sync]
conflict_strategy = "merge"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConflict, cfg.Sync.ConflictStrategy)
}

func TestResolve_CLIOverridesWinOverFileAndEnv(t *testing.T) {
	path := writeConfigFile(t, `
[profile.default.transport]
remote_host = "example.com"

[profile.default.sync]
local_dir = "/home/me/project"
remote_dir = "/srv/project"
`)

	dryRun := true
	rp, err := Resolve(
		EnvOverrides{ConfigPath: path},
		CLIOverrides{DryRun: &dryRun},
	)
	require.NoError(t, err)
	assert.True(t, rp.Sync.DryRun)
}

func TestResolve_SyntheticProfileWhenNoneConfigured(t *testing.T) {
	path := writeConfigFile(t, ``)

	_, err := Resolve(EnvOverrides{ConfigPath: path}, CLIOverrides{})
	// No local_dir/remote_dir set anywhere: validation must fail, but the
	// synthetic-profile path itself (no "profile not found" error) must be
	// exercised without panicking.
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "not found in config")
}

func TestResolve_RejectsRelativeLocalDir(t *testing.T) {
	path := writeConfigFile(t, `
[profile.default.transport]
remote_host = "example.com"

[profile.default.sync]
local_dir = "relative"
remote_dir = "/srv/project"
`)

	_, err := Resolve(EnvOverrides{ConfigPath: path}, CLIOverrides{})
	assert.Error(t, err)
}
