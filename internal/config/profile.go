package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// defaultProfileName is used when --profile/RSYNC_SYNC_PROFILE is omitted
// and the config defines a profile with this name.
const defaultProfileName = "default"

// ProfileConfig is one [profile.<name>] section. Section overrides
// (e.g. [profile.work.transport]) completely replace the corresponding
// global section — individual fields are never merged, matching the
// teacher project's profile semantics.
type ProfileConfig struct {
	Transport *TransportConfig `toml:"transport,omitempty"`
	Sync      *SyncConfig      `toml:"sync,omitempty"`
	Hooks     *HooksConfig     `toml:"hooks,omitempty"`
	Logging   *LoggingConfig   `toml:"logging,omitempty"`
}

// ResolvedProfile is the fully merged, validated configuration for one
// profile: global defaults with per-profile overrides applied, section by
// section, plus the state-directory-derived paths the Coordinator needs.
type ResolvedProfile struct {
	Name     string
	StateDir string

	Transport TransportConfig
	Sync      SyncConfig
	Hooks     HooksConfig
	Logging   LoggingConfig

	Durations Durations

	ManifestPath      string
	LockPath          string
	RemoteVersionPath string
	ControlSocketPath string
	HistoryPath       string
}

// ResolveProfile merges global defaults with profile-specific overrides. If
// profileName is empty, the "default" profile is selected when present.
func ResolveProfile(cfg *Config, profileName string) (*ResolvedProfile, error) {
	name, err := resolveProfileName(cfg, profileName)
	if err != nil {
		return nil, err
	}

	profile := cfg.Profiles[name]

	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = DefaultStateDir()
	}

	resolved := &ResolvedProfile{
		Name:     name,
		StateDir: stateDir,

		Transport: resolveSection(profile.Transport, cfg.Transport),
		Sync:      resolveSection(profile.Sync, cfg.Sync),
		Hooks:     resolveSection(profile.Hooks, cfg.Hooks),
		Logging:   resolveSection(profile.Logging, cfg.Logging),

		ManifestPath:      ProfileManifestPath(stateDir, name),
		LockPath:          ProfileLockPath(stateDir, name),
		RemoteVersionPath: ProfileRemoteVersionPath(stateDir, name),
		ControlSocketPath: ProfileControlSocketPath(stateDir, name),
		HistoryPath:       ProfileHistoryPath(stateDir, name),
	}

	if resolved.Transport.RemotePort == 0 {
		resolved.Transport.RemotePort = defaultRemotePort
	}

	resolved.Sync.LocalDir = expandTilde(resolved.Sync.LocalDir)
	resolved.Transport.SSHIdentity = expandTilde(resolved.Transport.SSHIdentity)

	if err := parseDurations(resolved); err != nil {
		return nil, err
	}

	return resolved, nil
}

func parseDurations(rp *ResolvedProfile) error {
	retryDelay, err := time.ParseDuration(orDefault(rp.Transport.RetryDelay, defaultRetryDelay))
	if err != nil {
		return fmt.Errorf("retry_delay: %w", err)
	}

	sshTimeout, err := time.ParseDuration(orDefault(rp.Transport.SSHTimeout, defaultSSHTimeout))
	if err != nil {
		return fmt.Errorf("ssh_timeout: %w", err)
	}

	rsyncTimeout, err := time.ParseDuration(orDefault(rp.Transport.RsyncTimeout, defaultRsyncTimeout))
	if err != nil {
		return fmt.Errorf("rsync_timeout: %w", err)
	}

	rp.Durations = Durations{
		RetryDelay:   retryDelay,
		SSHTimeout:   sshTimeout,
		RsyncTimeout: rsyncTimeout,
	}

	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}

// resolveSection returns the profile override if present, otherwise the
// global value. The generic form lets every section (Transport, Sync,
// Hooks, Logging) share one "replace, don't merge" implementation, exactly
// as the teacher project's own resolveSection helper does for its own
// sections.
func resolveSection[T any](profileOverride *T, global T) T {
	if profileOverride != nil {
		return *profileOverride
	}

	return global
}

func resolveProfileName(cfg *Config, profileName string) (string, error) {
	if len(cfg.Profiles) == 0 {
		return "", fmt.Errorf("no profiles defined in config")
	}

	if profileName != "" {
		if _, ok := cfg.Profiles[profileName]; !ok {
			return "", fmt.Errorf("profile %q not found in config", profileName)
		}

		return profileName, nil
	}

	if _, ok := cfg.Profiles[defaultProfileName]; ok {
		return defaultProfileName, nil
	}

	if len(cfg.Profiles) == 1 {
		for name := range cfg.Profiles {
			return name, nil
		}
	}

	return "", fmt.Errorf(
		"multiple profiles defined but none named %q; use --profile to select one", defaultProfileName)
}

// expandTilde replaces a leading "~/" with the user's home directory.
// Kept for LOCAL_DIR/SSH_IDENTITY values that reference the home directory
// in the config file.
func expandTilde(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}
