package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/export"
	"github.com/civiclens/lotscout/internal/fusion"
	"github.com/civiclens/lotscout/internal/model"
	"github.com/civiclens/lotscout/internal/sentiment"
	"github.com/civiclens/lotscout/internal/store"
)

var fuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse scores with sentiment and trend demand",
	Long: `Combines the competitive-stage scores with nearest-match community
sentiment, public-meeting transcript sentiment, and search-trend demand
into one calibrated probability per (lot, business type) pair.

Sentiment and trend inputs are optional: a missing corpus substitutes
neutral defaults, and a missing transcript corpus switches to the
single-corpus weighting scheme.

Outputs CSV, JSON, and XLSX under <output.dir> and prints the top-N table.

Examples:
  lotscout fuse
  lotscout fuse --scores data/processed/business_scores.csv --label downtown-q3
  lotscout fuse --save=false`,
	RunE: runFuse,
}

func init() {
	f := fuseCmd.Flags()
	f.String("scores", "", "competitive scores CSV (default: <output.dir>/business_scores.csv)")
	f.String("sentiment", "", "text sentiment corpus JSON")
	f.String("transcripts", "", "transcript sentiment corpus JSON")
	f.String("trends", "", "trend demand JSON")
	f.String("label", "", "run label recorded in the store")
	f.Bool("save", true, "persist the run and its scores to the store")

	rootCmd.AddCommand(fuseCmd)
}

func runFuse(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "fuse"))

	scoresPath, _ := cmd.Flags().GetString("scores")
	if scoresPath == "" {
		scoresPath = filepath.Join(cfg.Output.Dir, "business_scores.csv")
	}
	scores, err := export.ReadCategoryScores(scoresPath)
	if err != nil {
		return err
	}

	textPath, _ := cmd.Flags().GetString("sentiment")
	if textPath == "" {
		textPath = cfg.Sentiment.TextCorpusPath
	}
	transcriptPath, _ := cmd.Flags().GetString("transcripts")
	if transcriptPath == "" {
		transcriptPath = cfg.Sentiment.TranscriptCorpusPath
	}
	trendsPath, _ := cmd.Flags().GetString("trends")
	if trendsPath == "" {
		trendsPath = cfg.Fusion.TrendsPath
	}

	text, err := sentiment.LoadCorpus(textPath, "text")
	if err != nil {
		return err
	}
	transcript, err := sentiment.LoadCorpus(transcriptPath, "transcript")
	if err != nil {
		return err
	}
	trends, err := fusion.LoadTrends(trendsPath)
	if err != nil {
		return err
	}

	matcher := sentiment.NewMatcher(cfg.Sentiment)
	engine := fusion.NewEngine(cfg.Fusion, matcher)

	final, err := engine.Fuse(scores, text, transcript, trends)
	if err != nil {
		return err
	}

	if err := export.WriteCSV(filepath.Join(cfg.Output.Dir, "final_scores.csv"), final); err != nil {
		return err
	}
	if err := export.WriteJSON(filepath.Join(cfg.Output.Dir, "final_scores.json"), final); err != nil {
		return err
	}
	if err := export.WriteXLSX(filepath.Join(cfg.Output.Dir, "final_scores.xlsx"), final); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		label, _ := cmd.Flags().GetString("label")
		if err := persistRun(ctx, label, final); err != nil {
			return err
		}
	}

	log.Info("fuse complete", zap.Int("rows", len(final)))
	return export.PrintTopTable(cmd.OutOrStdout(), final, cfg.Output.TopN)
}

// persistRun records the fused output in the configured store.
func persistRun(ctx context.Context, label string, final []model.FinalScore) error {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, label)
	if err != nil {
		return err
	}
	if err := st.SaveFinalScores(ctx, run.ID, final); err != nil {
		completeErr := st.CompleteRun(ctx, run.ID, model.RunStatusFailed, 0)
		if completeErr != nil {
			return eris.Wrap(err, "fuse: save scores (run left running)")
		}
		return eris.Wrap(err, "fuse: save scores")
	}
	if err := st.CompleteRun(ctx, run.ID, model.RunStatusComplete, len(final)); err != nil {
		return err
	}

	zap.L().Info("run persisted",
		zap.String("run_id", run.ID),
		zap.Int("rows", len(final)),
	)
	return nil
}
