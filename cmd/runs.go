package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/civiclens/lotscout/internal/export"
	"github.com/civiclens/lotscout/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show a persisted run and its top scores",
	Long: `Shows a previously persisted run from the store. Without --id the most
recent run is shown.

Examples:
  lotscout runs
  lotscout runs --id 4f1c... --top 25`,
	RunE: runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.String("id", "", "run id (default: latest)")
	f.Int("top", 0, "number of scores to show (default: output.top_n)")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	runID, _ := cmd.Flags().GetString("id")
	run, err := st.LatestRun(ctx)
	if runID != "" {
		run, err = st.GetRun(ctx, runID)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s  label=%q  status=%s  rows=%d  created=%s\n\n",
		run.ID, run.Label, run.Status, run.RowCount, run.CreatedAt.Format("2006-01-02 15:04:05"))

	top, _ := cmd.Flags().GetInt("top")
	if top <= 0 {
		top = cfg.Output.TopN
	}
	scores, err := st.TopScores(ctx, run.ID, top)
	if err != nil {
		return err
	}
	return export.PrintTopTable(out, scores, top)
}
