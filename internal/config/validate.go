package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

var validConflictStrategies = map[string]bool{
	"newest": true, "local": true, "remote": true, "skip": true, "backup": true,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"auto": true, "text": true, "json": true,
}

// Validate checks the raw decoded Config and returns all errors found. It
// accumulates every error rather than stopping at the first, so a user
// fixing a config file sees the complete list in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateTransport(&cfg.Transport)...)
	errs = append(errs, validateSync(&cfg.Sync)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

// ValidateResolved checks cross-field constraints that only make sense
// after the four-layer override chain has produced a final ResolvedProfile
// — chiefly that LOCAL_DIR/REMOTE_DIR are absolute, per specification §6.
func ValidateResolved(rp *ResolvedProfile) error {
	var errs []error

	if rp.Sync.LocalDir == "" {
		errs = append(errs, errors.New("local_dir: must be set"))
	} else if !filepath.IsAbs(rp.Sync.LocalDir) {
		errs = append(errs, fmt.Errorf("local_dir: must be absolute, got %q", rp.Sync.LocalDir))
	}

	if rp.Sync.RemoteDir == "" {
		errs = append(errs, errors.New("remote_dir: must be set"))
	} else if !filepath.IsAbs(rp.Sync.RemoteDir) {
		errs = append(errs, fmt.Errorf("remote_dir: must be absolute, got %q", rp.Sync.RemoteDir))
	}

	if rp.Transport.RemoteHost == "" {
		errs = append(errs, errors.New("remote_host: must be set"))
	}

	if rp.Transport.RemotePort <= 0 || rp.Transport.RemotePort > 65535 {
		errs = append(errs, fmt.Errorf("remote_port: must be between 1 and 65535, got %d", rp.Transport.RemotePort))
	}

	return errors.Join(errs...)
}

func validateTransport(t *TransportConfig) []error {
	var errs []error

	if t.RemotePort != 0 && (t.RemotePort < 1 || t.RemotePort > 65535) {
		errs = append(errs, fmt.Errorf("remote_port: must be between 1 and 65535, got %d", t.RemotePort))
	}

	if t.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries: must be >= 0, got %d", t.MaxRetries))
	}

	errs = append(errs, validateDuration("retry_delay", t.RetryDelay)...)
	errs = append(errs, validateDuration("ssh_timeout", t.SSHTimeout)...)
	errs = append(errs, validateDuration("rsync_timeout", t.RsyncTimeout)...)

	if _, err := ParseSize(t.BandwidthLimit); err != nil {
		errs = append(errs, fmt.Errorf("bandwidth_limit: %w", err))
	}

	if _, err := ParseSize(t.MaxFileSize); err != nil {
		errs = append(errs, fmt.Errorf("max_file_size: %w", err))
	}

	return errs
}

func validateSync(s *SyncConfig) []error {
	var errs []error

	if s.ConflictStrategy != "" && !validConflictStrategies[s.ConflictStrategy] {
		errs = append(errs, fmt.Errorf(
			"conflict_strategy: must be one of newest, local, remote, skip, backup; got %q", s.ConflictStrategy))
	}

	if s.MaxParallelTransfers < 0 {
		errs = append(errs, fmt.Errorf("max_parallel_transfers: must be >= 0, got %d", s.MaxParallelTransfers))
	}

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if l.LogLevel != "" && !validLogLevels[l.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", l.LogLevel))
	}

	if l.LogFormat != "" && !validLogFormats[l.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format: must be one of auto, text, json; got %q", l.LogFormat))
	}

	return errs
}

func validateDuration(field, value string) []error {
	if value == "" {
		return nil
	}

	if _, err := time.ParseDuration(value); err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	return nil
}
