package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"patcheck/internal/store"
)

var (
	historyLimit int
	historyRun   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded batch runs",
	Long: `History lists recent batch runs from the history database, or the
per-snippet records of one run.

Examples:
  patcheck history
  patcheck history -n 5
  patcheck history --run 6e1f...`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the records of one run")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, _, err := setup()
	if err != nil {
		return err
	}
	if !fileExists(cfg.History.Path) {
		fmt.Fprintln(cmd.OutOrStdout(), "No history recorded.")
		return nil
	}

	db, err := store.Open(cfg.History.Path, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if historyRun != "" {
		records, err := db.RunRecords(historyRun)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no records for run %s", historyRun)
		}
		for _, r := range records {
			switch {
			case r.Error != "":
				fmt.Fprintf(out, "ERROR %s: %s\n", r.Source, r.Error)
			case r.Pass:
				fmt.Fprintf(out, "PASS  %s\n", r.Source)
			default:
				fmt.Fprintf(out, "FAIL  %s (%d rule(s) violated)\n", r.Source, r.Violations)
			}
		}
		return nil
	}

	runs, err := db.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No history recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %-25s %s  %d checked: %d passed, %d failed, %d errored\n",
			run.StartedAt.Format(time.RFC3339), run.Pattern, run.ID,
			run.Total, run.Passed, run.Failed, run.Errored)
	}
	return nil
}
