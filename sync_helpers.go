package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rsyncsync/internal/config"
	"rsyncsync/internal/coordinator"
	"rsyncsync/internal/executor"
	"rsyncsync/internal/history"
	"rsyncsync/internal/resolver"
	"rsyncsync/internal/transport"
)

// buildTransport constructs the SSH transport for a resolved profile,
// applying the bandwidth and max-file-size limits from its transport
// section.
func buildTransport(rp *config.ResolvedProfile) *transport.SSHTransport {
	endpoint := transport.Endpoint{
		User:     rp.Transport.RemoteUser,
		Host:     rp.Transport.RemoteHost,
		Port:     rp.Transport.RemotePort,
		Identity: rp.Transport.SSHIdentity,
	}

	tp := transport.NewSSHTransport(
		endpoint,
		rp.Sync.RemoteDir,
		rp.ControlSocketPath,
		rp.Durations.SSHTimeout,
		rp.Durations.RsyncTimeout,
	)

	if bw, err := config.ParseSize(rp.Transport.BandwidthLimit); err == nil && bw > 0 {
		tp.SetBandwidthLimit(int(bw / 1024))
	}

	if maxSize, err := config.ParseSize(rp.Transport.MaxFileSize); err == nil && maxSize > 0 {
		tp.SetMaxFileSize(maxSize)
	}

	return tp
}

// buildCoordinatorOptions assembles coordinator.Options from a resolved
// profile, wiring the conflict resolver and the executor's retry/fan-out
// policy.
func buildCoordinatorOptions(rp *config.ResolvedProfile) coordinator.Options {
	return coordinator.Options{
		Profile:           rp.Name,
		LocalDir:          rp.Sync.LocalDir,
		RemoteDir:         rp.Sync.RemoteDir,
		ExcludePatterns:   rp.Sync.Excludes,
		PropagateDeletes:  rp.Sync.PropagateDeletes,
		DryRun:            rp.Sync.DryRun,
		LockPath:          rp.LockPath,
		ManifestPath:      rp.ManifestPath,
		RemoteVersionPath: rp.RemoteVersionPath,
		OnComplete:        rp.Hooks.OnComplete,
		OnFailure:         rp.Hooks.OnFailure,

		Executor: executor.Options{
			MaxRetries:           uint64(rp.Transport.MaxRetries),
			RetryDelay:           rp.Durations.RetryDelay,
			MaxParallelTransfers: int64(rp.Sync.MaxParallelTransfers),
			BackupOnConflict:     rp.Sync.BackupOnConflict,
			DryRun:               rp.Sync.DryRun,
		},
		Resolver: resolver.New(resolver.Strategy(rp.Sync.ConflictStrategy), rp.Sync.ChecksumVerify),
	}
}

// buildCoordinator wires a Coordinator for the resolved profile with the
// given logger.
func buildCoordinator(rp *config.ResolvedProfile, logger *slog.Logger) *coordinator.Coordinator {
	return coordinator.New(buildTransport(rp), logger)
}

// recordHistory writes a best-effort audit row for one sync run. A failure
// to open or write the history database is logged and otherwise ignored —
// history is observability, never part of the sync's own success/failure.
func recordHistory(
	rp *config.ResolvedProfile, startedAt, endedAt time.Time, dryRun bool,
	summary executor.Summary, runErr error, logger *slog.Logger,
) {
	store, err := history.Open(rp.HistoryPath, logger)
	if err != nil {
		logger.Warn("history: could not open database", "error", err)
		return
	}
	defer store.Close()

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	rec := history.Record{
		RunID:     uuid.NewString(),
		Profile:   rp.Name,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		DryRun:    dryRun,
		Summary:   summary,
		Err:       errMsg,
	}

	if err := store.Record(context.Background(), rec); err != nil {
		logger.Warn("history: could not record run", "error", err)
	}
}
