package main

import (
	"github.com/spf13/cobra"

	"rsyncsync/internal/coordinator"
)

func newResetStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-state",
		Short: "Discard the profile's manifest and treat the next sync as a first sync",
		Long: `Delete the persisted manifest for the current profile. The next sync
scans both sides from scratch and treats every path present on either side
as new, per the first-sync semantics of the differ.`,
		RunE: runResetState,
	}
}

func runResetState(_ *cobra.Command, _ []string) error {
	rp := resolvedProfile

	if err := coordinator.ResetState(rp.ManifestPath); err != nil {
		return err
	}

	statusf("state reset for profile %q\n", rp.Name)

	return nil
}
