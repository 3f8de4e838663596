// Package compose turns a lot's geospatial metrics into one composite score
// per business category, with a human-readable rationale.
package compose

import (
	"fmt"
	"math"
	"strings"

	"github.com/civiclens/lotscout/internal/competitive"
	"github.com/civiclens/lotscout/internal/config"
)

// Factors are the per-category ingredients a policy combines. Saturation,
// traffic, and demographic scores are in [0,1]; the bonus/penalty terms are
// on the additive formula's point scale.
type Factors struct {
	Category        string
	CompetitorCount int
	Saturation      float64
	Traffic         float64
	Demographic     float64
	TrafficBonus    float64
	DemoBonus       float64
	UpkeepPenalty   float64
}

// ScoringPolicy composes the factors into a 0-1 score. Two formulas exist
// for this in the field; an implementation commits to exactly one.
type ScoringPolicy interface {
	Name() string
	Compose(f Factors) float64
}

// LinearBlend averages the three sub-scores. Matches the fusion stage's
// calibration, so it is the default policy.
type LinearBlend struct{}

// Name implements ScoringPolicy.
func (LinearBlend) Name() string { return "linear" }

// Compose implements ScoringPolicy.
func (LinearBlend) Compose(f Factors) float64 {
	return (f.Saturation + f.Traffic + f.Demographic) / 3
}

// AdditivePenalty starts from a base constant, subtracts a fixed penalty
// per competitor plus the overhead penalty, adds the traffic and
// demographic bonuses, and clamps to the configured floor/ceiling on a
// 0-100 scale. The result is reported as score/100.
type AdditivePenalty struct {
	cfg config.ComposeConfig
}

// NewAdditivePenalty builds the additive policy from its config section.
func NewAdditivePenalty(cfg config.ComposeConfig) AdditivePenalty {
	return AdditivePenalty{cfg: cfg}
}

// Name implements ScoringPolicy.
func (AdditivePenalty) Name() string { return "additive" }

// Compose implements ScoringPolicy.
func (p AdditivePenalty) Compose(f Factors) float64 {
	raw := p.cfg.BaseConstant -
		float64(f.CompetitorCount)*p.cfg.CompetitorPenalty -
		f.UpkeepPenalty +
		f.TrafficBonus +
		f.DemoBonus
	raw = math.Max(p.cfg.Floor, math.Min(p.cfg.Ceiling, raw))
	return raw / 100
}

// PolicyFor returns the configured policy implementation.
func PolicyFor(cfg config.ComposeConfig) ScoringPolicy {
	if cfg.Policy == "additive" {
		return NewAdditivePenalty(cfg)
	}
	return LinearBlend{}
}

// BuildFactors derives the per-category factors from a lot's metrics. The
// competitor count is scoped to the category, never the full listing set.
func BuildFactors(m *competitive.LotMetrics, category string, eng *competitive.Engine, cfg config.ComposeConfig) Factors {
	count := m.CompetitorCounts[category]

	trafficBonus := math.Min(cfg.MaxTrafficBonus,
		float64(m.TrafficCount)/cfg.TrafficBonusScale*cfg.MaxTrafficBonus)

	upkeep := math.Min(cfg.MaxUpkeepPenalty, math.Max(0, (m.TaxRatio-1)*10))

	var demoBonus float64
	if m.IncomeRatio > 1 {
		demoBonus = math.Min(cfg.MaxDemoBonus, math.Max(0, (m.IncomeRatio-1)*cfg.MaxDemoBonus))
	}

	return Factors{
		Category:        category,
		CompetitorCount: count,
		Saturation:      eng.SaturationScore(count),
		Traffic:         m.TrafficScore,
		Demographic:     m.DemoScore,
		TrafficBonus:    trafficBonus,
		DemoBonus:       demoBonus,
		UpkeepPenalty:   upkeep,
	}
}

// Reason builds the recommendation rationale enumerating which factors
// drove the score.
func Reason(f Factors) string {
	var parts []string

	if f.CompetitorCount == 0 {
		parts = append(parts, fmt.Sprintf("High demand: no existing %ss nearby.", f.Category))
	} else {
		parts = append(parts, fmt.Sprintf("Moderate competition: %d %s(s) in the immediate area.", f.CompetitorCount, f.Category))
	}
	if f.TrafficBonus > 10 {
		parts = append(parts, "Excellent foot traffic potential.")
	}
	if f.DemoBonus > 10 {
		parts = append(parts, "Perfect demographic fit for premium services.")
	}
	if f.UpkeepPenalty > 10 {
		parts = append(parts, "Caution: high overhead/taxes in this sector.")
	}

	return strings.Join(parts, " ")
}
