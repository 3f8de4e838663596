package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lotscout",
	Short: "Opportunity scoring for vacant lots",
	Long:  "Scores vacant lots against candidate business types by fusing geospatial competitive analysis, mined community sentiment, and search-trend demand into calibrated probabilities.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
