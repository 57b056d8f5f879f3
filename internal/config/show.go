package config

import (
	"fmt"
	"io"
	"strings"
)

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w, showing the effective values after all four
// override layers (defaults -> file -> env -> CLI) have been applied. No CLI
// subcommand calls it.
func RenderEffective(rp *ResolvedProfile, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration for profile %q\n\n", rp.Name)

	renderProfileSection(ew, rp)
	renderTransportSection(ew, &rp.Transport)
	renderSyncSection(ew, &rp.Sync)
	renderHooksSection(ew, &rp.Hooks)
	renderLoggingSection(ew, &rp.Logging)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error, so
// callers can chain printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderProfileSection(ew *errWriter, rp *ResolvedProfile) {
	ew.printf("[profile]\n")
	ew.printf("  name       = %q\n", rp.Name)
	ew.printf("  state_dir  = %q\n", rp.StateDir)
	ew.printf("  manifest   = %q\n", rp.ManifestPath)
	ew.printf("  lock       = %q\n", rp.LockPath)
	ew.printf("\n")
}

func renderTransportSection(ew *errWriter, t *TransportConfig) {
	ew.printf("[transport]\n")
	ew.printf("  remote_user     = %q\n", t.RemoteUser)
	ew.printf("  remote_host     = %q\n", t.RemoteHost)
	ew.printf("  remote_port     = %d\n", t.RemotePort)

	if t.SSHIdentity != "" {
		ew.printf("  ssh_identity    = %q\n", t.SSHIdentity)
	}

	ew.printf("  max_retries     = %d\n", t.MaxRetries)
	ew.printf("  retry_delay     = %q\n", t.RetryDelay)
	ew.printf("  ssh_timeout     = %q\n", t.SSHTimeout)
	ew.printf("  rsync_timeout   = %q\n", t.RsyncTimeout)
	ew.printf("  bandwidth_limit = %q\n", t.BandwidthLimit)
	ew.printf("  max_file_size   = %q\n", t.MaxFileSize)
	ew.printf("\n")
}

func renderSyncSection(ew *errWriter, s *SyncConfig) {
	ew.printf("[sync]\n")
	ew.printf("  local_dir              = %q\n", s.LocalDir)
	ew.printf("  remote_dir             = %q\n", s.RemoteDir)

	if len(s.Excludes) > 0 {
		ew.printf("  exclude_patterns       = [%s]\n", joinQuoted(s.Excludes))
	}

	ew.printf("  conflict_strategy      = %q\n", s.ConflictStrategy)
	ew.printf("  propagate_deletes      = %t\n", s.PropagateDeletes)
	ew.printf("  backup_on_conflict     = %t\n", s.BackupOnConflict)
	ew.printf("  checksum_verify        = %t\n", s.ChecksumVerify)
	ew.printf("  max_parallel_transfers = %d\n", s.MaxParallelTransfers)
	ew.printf("  dry_run                = %t\n", s.DryRun)
	ew.printf("  verbose                = %t\n", s.Verbose)
	ew.printf("\n")
}

func renderHooksSection(ew *errWriter, h *HooksConfig) {
	if h.OnComplete == "" && h.OnFailure == "" {
		return
	}

	ew.printf("[hooks]\n")

	if h.OnComplete != "" {
		ew.printf("  on_complete = %q\n", h.OnComplete)
	}

	if h.OnFailure != "" {
		ew.printf("  on_failure  = %q\n", h.OnFailure)
	}

	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", l.LogLevel)
	ew.printf("  log_format = %q\n", l.LogFormat)

	if l.LogFile != "" {
		ew.printf("  log_file   = %q\n", l.LogFile)
	}
}

func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}

	return strings.Join(quoted, ", ")
}
