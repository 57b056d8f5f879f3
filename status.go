package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rsyncsync/internal/manifest"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what a sync would do without doing it",
		Long: `Scan the local and remote directories, diff them against the last
successful sync's manifest, and print the resulting actions without
executing any of them.`,
		RunE: runStatus,
	}
}

// actionJSON is the JSON-serializable representation of one classified
// action, used by both status and conflicts.
type actionJSON struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	rp := resolvedProfile
	logger := buildLogger()

	co := buildCoordinator(rp, logger)
	opts := buildCoordinatorOptions(rp)

	actions, err := co.Status(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if flagJSON {
		return printActionsJSON(actions)
	}

	printActionsTable(actions)

	return nil
}

func printActionsJSON(actions manifest.ActionList) error {
	items := make([]actionJSON, len(actions))
	for i, a := range actions {
		items[i] = actionJSON{Type: a.Type.String(), Path: a.Path}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printActionsTable(actions manifest.ActionList) {
	headers := []string{"ACTION", "PATH"}
	rows := make([][]string, 0, len(actions))

	for _, a := range actions {
		if a.Type == manifest.Unchanged {
			continue
		}

		rows = append(rows, []string{a.Type.String(), a.Path})
	}

	if len(rows) == 0 {
		fmt.Println("Up to date, no actions pending.")
		return
	}

	printTable(os.Stdout, headers, rows)
}
