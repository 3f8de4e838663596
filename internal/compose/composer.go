package compose

import (
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/competitive"
	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

// Composer produces one CategoryScore per (lot, category) pair. The
// catch-all category stays in the lexicon for classification but is
// excluded from scoring.
type Composer struct {
	engine  *competitive.Engine
	policy  ScoringPolicy
	cfg     config.ComposeConfig
	lexicon []config.LexiconEntry
}

// NewComposer wires a Composer from the analysis engine and config.
func NewComposer(engine *competitive.Engine, cfg config.ComposeConfig, lexicon []config.LexiconEntry) *Composer {
	return &Composer{
		engine:  engine,
		policy:  PolicyFor(cfg),
		cfg:     cfg,
		lexicon: lexicon,
	}
}

// Compose scores every lot against every non-catch-all category. Each
// category's score is independent of the others for the same lot; only the
// lot-level geospatial sub-scores are shared. Output order follows the
// input lot order then lexicon order, so identical inputs give identical
// output.
func (c *Composer) Compose(metrics []competitive.LotMetrics) []model.CategoryScore {
	var out []model.CategoryScore

	for i := range metrics {
		m := &metrics[i]
		for _, entry := range c.lexicon {
			if entry.Category == model.GeneralBusiness {
				continue
			}
			f := BuildFactors(m, entry.Category, c.engine, c.cfg)
			out = append(out, model.CategoryScore{
				LotID:           m.LotID,
				Category:        entry.Category,
				SaturationScore: f.Saturation,
				TrafficScore:    f.Traffic,
				DemoScore:       f.Demographic,
				Composite:       c.policy.Compose(f),
				Reason:          Reason(f),
				Lat:             m.Lat,
				Lon:             m.Lon,
			})
		}
	}

	zap.L().Info("compose: category scores built",
		zap.String("policy", c.policy.Name()),
		zap.Int("lots", len(metrics)),
		zap.Int("rows", len(out)),
	)
	return out
}
