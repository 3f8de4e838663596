// Package sentiment matches externally mined sentiment aggregates to lots
// by nearest-neighbor geography, with distance-based confidence decay.
package sentiment

import (
	"encoding/json"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

// earthRadiusKM is the spherical-earth approximation radius.
const earthRadiusKM = 6371.0

// neutralScore is the midpoint sentiment used when no data exists and as
// the decay target for distant matches.
const neutralScore = 0.5

// Match is the outcome of a nearest-sentiment lookup for one (point,
// category) query.
type Match struct {
	LocationTag   string
	Score         float64
	DistanceKM    float64
	LowConfidence bool
}

// Corpus is one independent sentiment source (e.g. social text mining or
// transcribed public meetings), indexed by business type.
type Corpus struct {
	Name    string
	byType  map[string][]model.SentimentAggregate
	records int
}

// NewCorpus indexes the given aggregates by business type.
func NewCorpus(name string, records []model.SentimentAggregate) *Corpus {
	c := &Corpus{
		Name:    name,
		byType:  make(map[string][]model.SentimentAggregate),
		records: len(records),
	}
	for _, r := range records {
		c.byType[r.BusinessType] = append(c.byType[r.BusinessType], r)
	}
	return c
}

// LoadCorpus reads a JSON array of sentiment aggregates. A missing file
// yields a nil corpus rather than an error: sentiment sources are optional
// collaborators and their absence is recovered downstream with neutral
// defaults.
func LoadCorpus(path, name string) (*Corpus, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("sentiment: corpus file missing, continuing without it",
				zap.String("corpus", name),
				zap.String("path", path),
			)
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sentiment: read corpus %s", name)
	}

	var records []model.SentimentAggregate
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "sentiment: parse corpus %s", name)
	}

	zap.L().Info("sentiment: corpus loaded",
		zap.String("corpus", name),
		zap.Int("records", len(records)),
	)
	return NewCorpus(name, records), nil
}

// Empty reports whether the corpus holds no records.
func (c *Corpus) Empty() bool {
	return c == nil || c.records == 0
}

// Matcher finds the nearest sentiment aggregate for a category and applies
// the confidence-decay policy to far matches.
type Matcher struct {
	cfg config.SentimentConfig
}

// NewMatcher builds a Matcher from its config section.
func NewMatcher(cfg config.SentimentConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match scans the corpus records for the given business type and returns
// the one closest to (lat, lon). With no candidate records it returns the
// neutral default with the sentinel distance and "no_data" tag; it never
// fails. A nearest match beyond the distance threshold has its sentiment
// blended linearly toward neutral, reaching exactly neutral once the excess
// hits the decay ramp.
func (m *Matcher) Match(corpus *Corpus, lat, lon float64, businessType string) Match {
	noData := Match{
		LocationTag: model.NoData,
		Score:       neutralScore,
		DistanceKM:  m.cfg.NoDataDistanceKM,
	}
	if corpus.Empty() {
		return noData
	}

	candidates := corpus.byType[businessType]
	if len(candidates) == 0 {
		return noData
	}

	best := Match{DistanceKM: math.Inf(1), Score: neutralScore}
	for _, r := range candidates {
		d := Haversine(lat, lon, r.Lat, r.Lon)
		if d < best.DistanceKM {
			best.DistanceKM = d
			best.LocationTag = r.LocationTag
			best.Score = r.PositiveRatio
			best.LowConfidence = r.LowConfidence()
		}
	}

	best.Score = m.decay(best.Score, best.DistanceKM)
	return best
}

// decay blends a sentiment score toward neutral as the match distance
// exceeds the threshold. This dilutes far-but-only-match data instead of
// discarding it.
func (m *Matcher) decay(score, distanceKM float64) float64 {
	if distanceKM <= m.cfg.MaxDistanceKM {
		return score
	}
	blend := math.Min(1.0, (distanceKM-m.cfg.MaxDistanceKM)/m.cfg.DecayRampKM)
	return score*(1-blend) + neutralScore*blend
}

// Haversine returns the great-circle distance in kilometers between two
// WGS84 points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	phi1 := lat1 * rad
	phi2 := lat2 * rad
	dPhi := (lat2 - lat1) * rad
	dLam := (lon2 - lon1) * rad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLam/2)*math.Sin(dLam/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
