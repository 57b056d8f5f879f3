package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rsyncsync/internal/manifest"
)

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List paths currently classified as conflicts",
		Long: `Re-run the scan/load/diff steps of a sync cycle, without executing
anything, and print only the paths the differ classified as CONFLICT.`,
		RunE: runConflicts,
	}
}

func runConflicts(cmd *cobra.Command, _ []string) error {
	rp := resolvedProfile
	logger := buildLogger()

	co := buildCoordinator(rp, logger)
	opts := buildCoordinatorOptions(rp)

	actions, err := co.Status(cmd.Context(), opts)
	if err != nil {
		return err
	}

	conflicts := actions.Filter(manifest.Conflict)

	if len(conflicts) == 0 {
		fmt.Println("No conflicts.")
		return nil
	}

	if flagJSON {
		return printActionsJSON(conflicts)
	}

	printTable(os.Stdout, []string{"PATH"}, pathRows(conflicts))

	return nil
}

func pathRows(actions manifest.ActionList) [][]string {
	rows := make([][]string, len(actions))
	for i, a := range actions {
		rows[i] = []string{a.Path}
	}

	return rows
}
