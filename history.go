package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rsyncsync/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs from the run-history database",
		Long: `Display recent sync runs recorded for the current profile. The history
database is optional and best-effort: one that cannot be opened or read
reports "no history available" rather than failing the command, and an empty
one reports "no runs recorded yet".`,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", defaultHistoryLimit, "maximum number of runs to show")

	return cmd
}

// runJSON is the JSON-serializable representation of one history record.
type runJSON struct {
	RunID     string `json:"run_id"`
	Profile   string `json:"profile"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
	DryRun    bool   `json:"dry_run"`
	Pushed    int    `json:"pushed"`
	Pulled    int    `json:"pulled"`
	Deleted   int    `json:"deleted"`
	Conflicts int    `json:"conflicts"`
	Errors    int    `json:"errors"`
	Err       string `json:"error,omitempty"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	rp := resolvedProfile
	logger := buildLogger()

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	store, err := history.Open(rp.HistoryPath, logger)
	if err != nil {
		fmt.Println("no history available")
		return nil
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), rp.Name, limit)
	if err != nil {
		fmt.Println("no history available")
		return nil
	}

	if len(records) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	if flagJSON {
		return printHistoryJSON(records)
	}

	printHistoryTable(records)

	return nil
}

func printHistoryJSON(records []history.Record) error {
	items := make([]runJSON, len(records))
	for i, r := range records {
		items[i] = runJSON{
			RunID:     r.RunID,
			Profile:   r.Profile,
			StartedAt: r.StartedAt.Format("2006-01-02T15:04:05Z"),
			EndedAt:   r.EndedAt.Format("2006-01-02T15:04:05Z"),
			DryRun:    r.DryRun,
			Pushed:    r.Summary.Pushed,
			Pulled:    r.Summary.Pulled,
			Deleted:   r.Summary.DeletedLocal + r.Summary.DeletedRemote,
			Conflicts: r.Summary.Conflicts,
			Errors:    r.Summary.Errors,
			Err:       r.Err,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printHistoryTable(records []history.Record) {
	headers := []string{"STARTED", "PUSHED", "PULLED", "DELETED", "CONFLICTS", "ERRORS", "RESULT"}
	rows := make([][]string, len(records))

	for i, r := range records {
		result := "ok"
		if r.Err != "" {
			result = r.Err
		}

		rows[i] = []string{
			formatTime(r.StartedAt),
			fmt.Sprint(r.Summary.Pushed),
			fmt.Sprint(r.Summary.Pulled),
			fmt.Sprint(r.Summary.DeletedLocal + r.Summary.DeletedRemote),
			fmt.Sprint(r.Summary.Conflicts),
			fmt.Sprint(r.Summary.Errors),
			result,
		}
	}

	printTable(os.Stdout, headers, rows)
}
