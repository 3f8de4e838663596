// Package competitive computes per-lot saturation, traffic, and demographic
// signals from the normalized geographic layers.
package competitive

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/layer"
	"github.com/civiclens/lotscout/internal/model"
)

// Averages holds the citywide means used as missing-join fallbacks and
// ratio denominators. Computed once per run, read-only afterward.
type Averages struct {
	MedianIncome float64
	TotalTaxes   float64
}

// LotMetrics is the geospatial evidence gathered for one lot. Ratio-typed
// scores lie in [0,1]; counts and ratios are raw inputs for the composing
// policies.
type LotMetrics struct {
	LotID string
	Lat   float64
	Lon   float64

	CompetitorCounts map[string]int
	TrafficCount     int

	TrafficScore float64
	DemoScore    float64

	MedianIncome float64
	TotalTaxes   float64
	IncomeRatio  float64
	TaxRatio     float64
}

// Engine runs the competitive analysis stage.
type Engine struct {
	cfg config.AnalysisConfig
}

// NewEngine builds an Engine with the given analysis parameters.
func NewEngine(cfg config.AnalysisConfig) *Engine {
	return &Engine{cfg: cfg}
}

// SaturationScore maps a competitor count to a score via the configured
// step table: index 0 is the zero-competitor score, and counts at or past
// the table length score 0. The discrete table is intentional; it models a
// qualitative no/some/oversaturated judgment, not a continuous decay.
func (e *Engine) SaturationScore(count int) float64 {
	if count < 0 {
		count = 0
	}
	if count >= len(e.cfg.SaturationSteps) {
		return 0.0
	}
	return e.cfg.SaturationSteps[count]
}

// Analyze enriches each lot with tax and census joins, counts nearby
// listings per category within the competition buffer and all listings
// within the traffic buffer, and normalizes traffic and income across the
// lot set. Lots share no mutable state, so the per-lot scans run in
// parallel.
func (e *Engine) Analyze(
	ctx context.Context,
	lots []model.Lot,
	listings []model.BusinessListing,
	tracts *layer.Layer,
	parcels *layer.Layer,
	incomeField, taxField string,
) ([]LotMetrics, Averages, error) {
	if len(lots) == 0 {
		return nil, Averages{}, eris.New("competitive: no lots to analyze")
	}
	if tracts == nil || len(tracts.Features) == 0 {
		return nil, Averages{}, eris.New("competitive: census tract layer is empty")
	}

	avg := cityAverages(tracts, parcels, incomeField, taxField)
	zap.L().Info("competitive: citywide averages",
		zap.Float64("median_income", avg.MedianIncome),
		zap.Float64("total_taxes", avg.TotalTaxes),
	)

	// Pre-filter parcels to the lots' bounding box; municipal parcel files
	// cover far more ground than the study area.
	var parcelFeatures []layer.Feature
	if parcels != nil {
		parcelFeatures = maskByBBox(parcels.Features, lots, e.cfg.TrafficRadiusM)
	}

	metrics := make([]LotMetrics, len(lots))

	g, _ := errgroup.WithContext(ctx)
	for i := range lots {
		g.Go(func() error {
			metrics[i] = e.analyzeLot(&lots[i], listings, tracts.Features, parcelFeatures, avg, incomeField, taxField)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Averages{}, eris.Wrap(err, "competitive: analyze lots")
	}

	e.normalize(metrics)

	return metrics, avg, nil
}

// analyzeLot gathers counts and join results for a single lot.
func (e *Engine) analyzeLot(
	lot *model.Lot,
	listings []model.BusinessListing,
	tracts, parcels []layer.Feature,
	avg Averages,
	incomeField, taxField string,
) LotMetrics {
	m := LotMetrics{
		LotID:            lot.ID,
		Lat:              lot.Lat,
		Lon:              lot.Lon,
		CompetitorCounts: make(map[string]int),
	}

	compR2 := e.cfg.CompetitionRadiusM * e.cfg.CompetitionRadiusM
	trafR2 := e.cfg.TrafficRadiusM * e.cfg.TrafficRadiusM
	for i := range listings {
		dx := listings[i].X - lot.X
		dy := listings[i].Y - lot.Y
		d2 := dx*dx + dy*dy
		if d2 <= compR2 {
			m.CompetitorCounts[listings[i].Category]++
		}
		if d2 <= trafR2 {
			m.TrafficCount++
		}
	}

	m.MedianIncome = joinIncome(lot, tracts, avg, incomeField)
	m.TotalTaxes = joinTaxes(lot, parcels, avg, taxField)

	m.IncomeRatio = ratio(m.MedianIncome, avg.MedianIncome)
	m.TaxRatio = ratio(m.TotalTaxes, avg.TotalTaxes)

	return m
}

// joinIncome finds the census tract containing the lot point. A lot outside
// every tract falls back to the citywide average rather than propagating a
// missing value.
func joinIncome(lot *model.Lot, tracts []layer.Feature, avg Averages, incomeField string) float64 {
	for i := range tracts {
		if tracts[i].ContainsXY(lot.X, lot.Y) {
			if v, ok := tracts[i].FloatProp(incomeField); ok {
				return v
			}
			break
		}
	}
	return avg.MedianIncome
}

// joinTaxes resolves the tax parcel for a lot. Overlapping parcels make the
// join ambiguous; the match with the highest tax value wins so results stay
// deterministic. No match falls back to the citywide average.
func joinTaxes(lot *model.Lot, parcels []layer.Feature, avg Averages, taxField string) float64 {
	best := math.Inf(-1)
	found := false
	for i := range parcels {
		if !parcels[i].ContainsXY(lot.X, lot.Y) {
			continue
		}
		v, ok := parcels[i].FloatProp(taxField)
		if !ok {
			continue
		}
		if v > best {
			best = v
			found = true
		}
	}
	if !found {
		return avg.TotalTaxes
	}
	return best
}

// normalize min-max scales traffic counts and median income across the lot
// set, or against the configured fixed bounds when provided. The
// dataset-relative variant is not portable across runs with different lot
// sets.
func (e *Engine) normalize(metrics []LotMetrics) {
	trafMin, trafMax := e.cfg.TrafficBounds[0], e.cfg.TrafficBounds[1]
	incMin, incMax := e.cfg.IncomeBounds[0], e.cfg.IncomeBounds[1]

	if trafMax <= trafMin {
		trafMin, trafMax = math.Inf(1), math.Inf(-1)
		for i := range metrics {
			trafMin = math.Min(trafMin, float64(metrics[i].TrafficCount))
			trafMax = math.Max(trafMax, float64(metrics[i].TrafficCount))
		}
	}
	if incMax <= incMin {
		incMin, incMax = math.Inf(1), math.Inf(-1)
		for i := range metrics {
			incMin = math.Min(incMin, metrics[i].MedianIncome)
			incMax = math.Max(incMax, metrics[i].MedianIncome)
		}
	}

	for i := range metrics {
		metrics[i].TrafficScore = minMax(float64(metrics[i].TrafficCount), trafMin, trafMax)
		metrics[i].DemoScore = minMax(metrics[i].MedianIncome, incMin, incMax)
	}
}

// minMax scales v into [0,1]. A degenerate range scores the neutral
// midpoint instead of dividing by zero.
func minMax(v, min, max float64) float64 {
	if max <= min {
		return 0.5
	}
	s := (v - min) / (max - min)
	return math.Max(0, math.Min(1, s))
}

func ratio(v, denom float64) float64 {
	if denom <= 0 {
		return 1
	}
	return v / denom
}

// cityAverages computes the citywide mean income and tax burden once.
func cityAverages(tracts, parcels *layer.Layer, incomeField, taxField string) Averages {
	var avg Averages

	var incSum float64
	var incN int
	for i := range tracts.Features {
		if v, ok := tracts.Features[i].FloatProp(incomeField); ok {
			incSum += v
			incN++
		}
	}
	if incN > 0 {
		avg.MedianIncome = incSum / float64(incN)
	}

	if parcels != nil {
		var taxSum float64
		var taxN int
		for i := range parcels.Features {
			if v, ok := parcels.Features[i].FloatProp(taxField); ok {
				taxSum += v
				taxN++
			}
		}
		if taxN > 0 {
			avg.TotalTaxes = taxSum / float64(taxN)
		}
	}

	return avg
}

// maskByBBox keeps features whose representative point falls inside the
// lots' bounding box expanded by margin meters.
func maskByBBox(features []layer.Feature, lots []model.Lot, margin float64) []layer.Feature {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range lots {
		minX = math.Min(minX, lots[i].X)
		minY = math.Min(minY, lots[i].Y)
		maxX = math.Max(maxX, lots[i].X)
		maxY = math.Max(maxY, lots[i].Y)
	}
	minX -= margin
	minY -= margin
	maxX += margin
	maxY += margin

	var kept []layer.Feature
	for i := range features {
		f := features[i]
		if f.X >= minX && f.X <= maxX && f.Y >= minY && f.Y <= maxY {
			kept = append(kept, f)
		}
	}
	return kept
}
