package main

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/classify"
	"github.com/civiclens/lotscout/internal/competitive"
	"github.com/civiclens/lotscout/internal/compose"
	"github.com/civiclens/lotscout/internal/export"
	"github.com/civiclens/lotscout/internal/layer"
	"github.com/civiclens/lotscout/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the competitive analysis stage",
	Long: `Loads the lot, business, census tract, and tax parcel layers, harmonizes
their coordinate systems, and scores every (lot, business type) pair on
competitive saturation, foot traffic, and demographic fit.

Results are written to <output.dir>/business_scores.csv for the fuse stage.

Examples:
  # Score with config-file layer paths
  lotscout score

  # Override the lot layer
  lotscout score --lots data/my_lots.geojson`,
	RunE: runScoreStage,
}

func init() {
	f := scoreCmd.Flags()
	f.String("lots", "", "lot layer path (overrides config)")
	f.String("businesses", "", "business layer path (overrides config)")
	f.String("census", "", "census tract layer path (overrides config)")
	f.String("parcels", "", "tax parcel layer path (overrides config)")
	f.String("output", "", "output CSV path (default: <output.dir>/business_scores.csv)")

	rootCmd.AddCommand(scoreCmd)
}

func runScoreStage(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layers := cfg.Layers
	if v, _ := cmd.Flags().GetString("lots"); v != "" {
		layers.LotsPath = v
	}
	if v, _ := cmd.Flags().GetString("businesses"); v != "" {
		layers.BusinessesPath = v
	}
	if v, _ := cmd.Flags().GetString("census"); v != "" {
		layers.CensusPath = v
	}
	if v, _ := cmd.Flags().GetString("parcels"); v != "" {
		layers.TaxParcelsPath = v
	}

	log := zap.L().With(zap.String("command", "score"))

	lotLayer, err := layer.Load(layers.LotsPath, "lots")
	if err != nil {
		return eris.Wrap(err, "score: load lots")
	}
	bizLayer, err := layer.Load(layers.BusinessesPath, "businesses")
	if err != nil {
		return eris.Wrap(err, "score: load businesses")
	}
	tractLayer, err := layer.Load(layers.CensusPath, "census_tracts")
	if err != nil {
		return eris.Wrap(err, "score: load census tracts")
	}

	// Tax parcels are optional; their absence degrades tax joins to the
	// citywide average.
	var parcelLayer *layer.Layer
	if layers.TaxParcelsPath != "" {
		parcelLayer, err = layer.Load(layers.TaxParcelsPath, "tax_parcels")
		if err != nil && !eris.Is(err, layer.ErrMissingInput) {
			return eris.Wrap(err, "score: load tax parcels")
		}
		if parcelLayer == nil {
			log.Warn("tax parcel layer missing, using citywide tax averages")
		}
	}

	norm := layer.NewNormalizer(layers.UTMZone, layers.SouthHemi)
	for _, l := range []*layer.Layer{lotLayer, bizLayer, tractLayer, parcelLayer} {
		if l == nil {
			continue
		}
		if err := norm.Normalize(l); err != nil {
			return eris.Wrapf(err, "score: normalize layer %s", l.Name)
		}
	}

	lots := layer.Lots(lotLayer)
	listings := layer.Listings(bizLayer)
	classify.New(cfg.Lexicon).Assign(listings)

	log.Info("layers loaded",
		zap.Int("lots", len(lots)),
		zap.Int("listings", len(listings)),
		zap.Int("tracts", len(tractLayer.Features)),
	)

	engine := competitive.NewEngine(cfg.Analysis)
	metrics, avg, err := engine.Analyze(ctx, lots, listings, tractLayer, parcelLayer, layers.IncomeField, layers.TaxField)
	if err != nil {
		return err
	}
	log.Info("competitive analysis complete",
		zap.Float64("avg_income", avg.MedianIncome),
		zap.Float64("avg_taxes", avg.TotalTaxes),
	)

	scores := compose.NewComposer(engine, cfg.Compose, cfg.Lexicon).Compose(metrics)

	for i := range scores {
		if err := model.ValidateCategoryScore(&scores[i]); err != nil {
			return eris.Wrap(err, "score: validate output")
		}
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = filepath.Join(cfg.Output.Dir, "business_scores.csv")
	}
	return export.WriteCSV(outPath, scores)
}
