package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/export"
	"github.com/civiclens/lotscout/internal/model"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate fused output integrity",
	Long: `Verifies the fused output against its structural guarantees: every row
has an id and business type, no (id, business_type) pair repeats, every
lot covers the same category set, and every probability lies inside its
calibration interval.

Exits nonzero on the first violation.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("input", "", "final scores CSV (default: <output.dir>/final_scores.csv)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("input")
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, "final_scores.csv")
	}

	final, err := export.ReadFinalScores(path)
	if err != nil {
		return err
	}
	if len(final) == 0 {
		return eris.Errorf("check: %s has no rows", path)
	}

	// The widest interval of the two schemes bounds every valid output.
	floor := cfg.Fusion.Dual.Floor
	if cfg.Fusion.Single.Floor < floor {
		floor = cfg.Fusion.Single.Floor
	}
	ceiling := cfg.Fusion.Dual.Ceiling
	if cfg.Fusion.Single.Ceiling > ceiling {
		ceiling = cfg.Fusion.Single.Ceiling
	}

	seen := make(map[string]bool, len(final))
	perLot := make(map[string]map[string]bool)
	categories := make(map[string]bool)

	for i := range final {
		fs := &final[i]
		if fs.LotID == "" || fs.BusinessType == "" {
			return eris.Errorf("check: row %d has empty id or business_type", i)
		}
		key := fs.LotID + "\x00" + fs.BusinessType
		if seen[key] {
			return eris.Errorf("check: duplicate pair (%s, %s)", fs.LotID, fs.BusinessType)
		}
		seen[key] = true

		if perLot[fs.LotID] == nil {
			perLot[fs.LotID] = make(map[string]bool)
		}
		perLot[fs.LotID][fs.BusinessType] = true
		categories[fs.BusinessType] = true

		if err := model.ValidateFinalScore(fs, floor, ceiling); err != nil {
			return eris.Wrap(err, "check")
		}
	}

	// Coverage: every lot must carry every scored category.
	for lotID, cats := range perLot {
		for cat := range categories {
			if !cats[cat] {
				return eris.Errorf("check: lot %s missing category %q", lotID, cat)
			}
		}
	}

	zap.L().Info("check passed",
		zap.String("input", path),
		zap.Int("rows", len(final)),
		zap.Int("lots", len(perLot)),
		zap.Int("categories", len(categories)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rows, %d lots, %d categories\n", len(final), len(perLot), len(categories))
	return nil
}
