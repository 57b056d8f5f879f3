package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// appName names the application's config/state directories on disk.
const appName = "rsync-sync"

// configFileName is the default config file name inside DefaultConfigDir.
const configFileName = "config.toml"

// DefaultConfigDir returns the platform-specific directory for the config
// file. On Linux, respects XDG_CONFIG_HOME (defaults to ~/.config/rsync-sync).
// On macOS, uses ~/Library/Application Support/rsync-sync. Other platforms
// fall back to ~/.config/rsync-sync.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		return linuxConfigDir(home)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".config", appName)
	}
}

func linuxConfigDir(home string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	return filepath.Join(home, ".config", appName)
}

// DefaultConfigPath returns the full path to the default config file, used
// when neither RSYNC_SYNC_CONFIG nor --config is given.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

// DefaultStateDir returns the default location for per-profile manifest,
// lock, and remote-version files: the "state" subdirectory of
// DefaultConfigDir (~/.config/rsync-sync/state on Linux when
// XDG_CONFIG_HOME is unset).
func DefaultStateDir() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, "state")
}

// ProfileManifestPath returns the manifest file path for a profile under
// stateDir.
func ProfileManifestPath(stateDir, profile string) string {
	return filepath.Join(stateDir, profile+".manifest")
}

// ProfileLockPath returns the PID lock file path for a profile under
// stateDir.
func ProfileLockPath(stateDir, profile string) string {
	return filepath.Join(stateDir, profile+".lock")
}

// ProfileRemoteVersionPath returns the cached remote-version file path for a
// profile under stateDir, used by the Coordinator's 24h preflight cache.
func ProfileRemoteVersionPath(stateDir, profile string) string {
	return filepath.Join(stateDir, profile+".remote-version")
}

// ProfileControlSocketPath returns the ssh ControlMaster socket path for a
// profile under stateDir.
func ProfileControlSocketPath(stateDir, profile string) string {
	return filepath.Join(stateDir, profile+".ctl")
}

// ProfileHistoryPath returns the optional run-history database path for a
// profile under stateDir. Losing this file never affects sync correctness.
func ProfileHistoryPath(stateDir, profile string) string {
	return filepath.Join(stateDir, profile+".history.db")
}
