package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfile_FallsBackToDefaultName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles["default"] = ProfileConfig{}

	rp, err := ResolveProfile(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "default", rp.Name)
}

func TestResolveProfile_SingleNonDefaultProfileIsSelected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles["only"] = ProfileConfig{}

	rp, err := ResolveProfile(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "only", rp.Name)
}

func TestResolveProfile_AmbiguousWithoutDefaultIsError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles["a"] = ProfileConfig{}
	cfg.Profiles["b"] = ProfileConfig{}

	_, err := ResolveProfile(cfg, "")
	assert.Error(t, err)
}

func TestResolveProfile_UnknownExplicitNameIsError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles["default"] = ProfileConfig{}

	_, err := ResolveProfile(cfg, "missing")
	assert.Error(t, err)
}

func TestResolveProfile_SectionOverrideReplacesGlobalWholesale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport.RemoteHost = "global.example.com"
	cfg.Transport.MaxRetries = 3

	overrideRetries := 9
	cfg.Profiles["work"] = ProfileConfig{
		Transport: &TransportConfig{RemoteHost: "work.example.com", MaxRetries: overrideRetries},
	}

	rp, err := ResolveProfile(cfg, "work")
	require.NoError(t, err)
	assert.Equal(t, "work.example.com", rp.Transport.RemoteHost)
	assert.Equal(t, overrideRetries, rp.Transport.MaxRetries)
}

func TestResolveProfile_NoOverrideKeepsGlobalSection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sync.ConflictStrategy = "skip"
	cfg.Profiles["work"] = ProfileConfig{}

	rp, err := ResolveProfile(cfg, "work")
	require.NoError(t, err)
	assert.Equal(t, "skip", rp.Sync.ConflictStrategy)
}

func TestResolveProfile_DefaultsRemotePortWhenUnset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport.RemotePort = 0
	cfg.Profiles["default"] = ProfileConfig{}

	rp, err := ResolveProfile(cfg, "default")
	require.NoError(t, err)
	assert.Equal(t, defaultRemotePort, rp.Transport.RemotePort)
}

func TestResolveProfile_ParsesDurationsFromStrings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles["default"] = ProfileConfig{}

	rp, err := ResolveProfile(cfg, "default")
	require.NoError(t, err)
	assert.Positive(t, rp.Durations.RetryDelay)
	assert.Positive(t, rp.Durations.SSHTimeout)
	assert.Positive(t, rp.Durations.RsyncTimeout)
}

func TestResolveProfile_RejectsUnparsableDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport.RetryDelay = "not-a-duration"
	cfg.Profiles["default"] = ProfileConfig{}

	_, err := ResolveProfile(cfg, "default")
	assert.Error(t, err)
}

func TestResolveProfile_DerivesStatePathsFromStateDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = "/var/lib/rsync-sync/state"
	cfg.Profiles["work"] = ProfileConfig{}

	rp, err := ResolveProfile(cfg, "work")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/rsync-sync/state/work.manifest", rp.ManifestPath)
	assert.Equal(t, "/var/lib/rsync-sync/state/work.lock", rp.LockPath)
}

func TestExpandTilde_ExpandsLeadingHomeReference(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	got := expandTilde("~/project")
	assert.Equal(t, "/home/tester/project", got)
}

func TestExpandTilde_LeavesAbsolutePathUnchanged(t *testing.T) {
	assert.Equal(t, "/srv/project", expandTilde("/srv/project"))
}
