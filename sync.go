package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a one-shot bidirectional sync cycle",
		Long: `Run a one-shot sync cycle between the local directory and the remote
directory, using a three-way diff against the last successful sync's
manifest. Use --dry-run to preview actions without executing them.`,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	rp := resolvedProfile
	logger := buildLogger()

	co := buildCoordinator(rp, logger)
	opts := buildCoordinatorOptions(rp)

	startedAt := time.Now()
	report, err := co.Run(cmd.Context(), opts)
	endedAt := time.Now()

	recordHistory(rp, startedAt, endedAt, opts.DryRun, report.Summary, err, logger)

	if err != nil {
		return err
	}

	s := report.Summary

	if !flagQuiet {
		fmt.Printf(
			"pushed %d, pulled %d, deleted %d local / %d remote, %d conflicts, %d skipped, %d errors\n",
			s.Pushed, s.Pulled, s.DeletedLocal, s.DeletedRemote, s.Conflicts, s.Skipped, s.Errors,
		)
	}

	if s.Errors > 0 {
		return fmt.Errorf("sync completed with %d action error(s)", s.Errors)
	}

	return nil
}
