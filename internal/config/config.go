// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for rsync-sync. It supports the same
// four-layer override chain the teacher project uses (defaults -> config
// file -> environment -> CLI flags), with per-profile section overrides
// that completely replace the corresponding global section rather than
// merging individual fields.
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
// A profile that defines its own [profile.<name>.transport] (etc.) section
// completely replaces the corresponding global section.
type Config struct {
	StateDir  string                   `toml:"state_dir"`
	Profiles  map[string]ProfileConfig `toml:"profile"`
	Transport TransportConfig          `toml:"transport"`
	Sync      SyncConfig               `toml:"sync"`
	Hooks     HooksConfig              `toml:"hooks"`
	Logging   LoggingConfig            `toml:"logging"`
}

// TransportConfig configures the remote endpoint and the transfer policy
// used to reach it: REMOTE_USER/REMOTE_HOST/REMOTE_PORT/SSH_IDENTITY,
// MAX_RETRIES/RETRY_DELAY, SSH_TIMEOUT/RSYNC_TIMEOUT,
// BANDWIDTH_LIMIT/MAX_FILE_SIZE.
type TransportConfig struct {
	RemoteUser  string `toml:"remote_user"`
	RemoteHost  string `toml:"remote_host"`
	RemotePort  int    `toml:"remote_port"`
	SSHIdentity string `toml:"ssh_identity"`

	MaxRetries int    `toml:"max_retries"`
	RetryDelay string `toml:"retry_delay"`

	SSHTimeout   string `toml:"ssh_timeout"`
	RsyncTimeout string `toml:"rsync_timeout"`

	BandwidthLimit string `toml:"bandwidth_limit"` // e.g. "0", "500KB"
	MaxFileSize    string `toml:"max_file_size"`   // e.g. "0", "50GB"
}

// SyncConfig configures the sync roots and the diff/execute policy:
// LOCAL_DIR/REMOTE_DIR, EXCLUDE_PATTERNS, CONFLICT_STRATEGY,
// PROPAGATE_DELETES, BACKUP_ON_CONFLICT, CHECKSUM_VERIFY, plus the
// executor's bounded fan-out and the runtime DRY_RUN/VERBOSE flags (also
// settable via CLI, per specification §6).
type SyncConfig struct {
	LocalDir  string   `toml:"local_dir"`
	RemoteDir string   `toml:"remote_dir"`
	Excludes  []string `toml:"exclude_patterns"`

	ConflictStrategy      string `toml:"conflict_strategy"`
	PropagateDeletes      bool   `toml:"propagate_deletes"`
	BackupOnConflict      bool   `toml:"backup_on_conflict"`
	ChecksumVerify        bool   `toml:"checksum_verify"`
	MaxParallelTransfers  int    `toml:"max_parallel_transfers"`

	DryRun  bool `toml:"dry_run"`
	Verbose bool `toml:"verbose"`
}

// HooksConfig configures ON_COMPLETE/ON_FAILURE shell hooks.
type HooksConfig struct {
	OnComplete string `toml:"on_complete"`
	OnFailure  string `toml:"on_failure"`
}

// LoggingConfig controls the ambient log/slog output, following the
// teacher's LoggingConfig shape.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // "auto", "text", "json"
	LogFile   string `toml:"log_file"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to zero value" — --dry-run=false differs from not
// passing --dry-run at all.
type CLIOverrides struct {
	ConfigPath string // --config (empty = use default)
	Profile    string // --profile (empty = use default)
	DryRun     *bool  // --dry-run
	Verbose    *bool  // --verbose
}

// Durations holds the parsed time.Duration form of the transport's
// string-typed timeout fields, computed once during ResolveProfile so
// downstream packages never re-parse a duration string.
type Durations struct {
	RetryDelay   time.Duration
	SSHTimeout   time.Duration
	RsyncTimeout time.Duration
}
