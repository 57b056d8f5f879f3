package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configFilePermissions is the standard permission mode for config files.
const configFilePermissions = 0o644

// configDirPermissions is the standard permission mode for config
// directories.
const configDirPermissions = 0o755

// configTemplate is the default config file content written by
// WriteDefaultConfig: a [profile.default] skeleton with the endpoint and
// main sync settings as commented-out examples. The retry, timeout,
// size-limit, hook and logging options are not listed in it.
const configTemplate = `# rsync-sync configuration

[profile.default]

[profile.default.transport]
# remote_user = "deploy"
# remote_host = "example.com"
# remote_port = 22
# ssh_identity = "~/.ssh/id_ed25519"

[profile.default.sync]
# local_dir = "/home/me/project"
# remote_dir = "/srv/project"
# exclude_patterns = [".git/", "node_modules/"]
# conflict_strategy = "newest"
# propagate_deletes = true
`

// WriteDefaultConfig writes configTemplate to path unless a file already
// exists there, so a user's existing config is never clobbered.
// The write is atomic (temp file + rename) and parent directories are
// created as needed.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	return atomicWriteFile(path, []byte(configTemplate))
}

// atomicWriteFile writes data to a temporary file in the same directory as
// path, then renames it into place, so a crash mid-write never leaves a
// truncated config file behind.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
