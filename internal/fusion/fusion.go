// Package fusion blends competitive, sentiment, and trend-demand signals
// into one calibrated probability per (lot, business type) pair.
package fusion

import (
	"encoding/json"
	"math"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
	"github.com/civiclens/lotscout/internal/sentiment"
)

// Engine is the fusion stage. It is a pure per-row function over its
// inputs; the only cross-row state is the ordering of the output.
type Engine struct {
	cfg     config.FusionConfig
	matcher *sentiment.Matcher
}

// NewEngine builds a fusion Engine.
func NewEngine(cfg config.FusionConfig, matcher *sentiment.Matcher) *Engine {
	return &Engine{cfg: cfg, matcher: matcher}
}

// LoadTrends reads the JSON array of trend demand scores. A missing file
// wraps layer-level absence semantics: trends are an optional signal, so
// absence yields an empty slice and every category falls back to the
// neutral demand default.
func LoadTrends(path string) ([]model.TrendScore, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("fusion: trends file missing, using neutral demand defaults",
				zap.String("path", path),
			)
			return nil, nil
		}
		return nil, eris.Wrap(err, "fusion: read trends")
	}
	var trends []model.TrendScore
	if err := json.Unmarshal(data, &trends); err != nil {
		return nil, eris.Wrap(err, "fusion: parse trends")
	}
	return trends, nil
}

// Fuse combines every category score with the nearest sentiment match from
// each corpus and the category's trend demand. Every (lot, category) input
// row with nonzero demand produces exactly one output row; missing
// sub-scores substitute neutral defaults, never nulls. The transcript
// corpus being absent switches the weighting scheme rather than failing.
//
// A trend category that no score row covers is an integration bug (the
// lexicon and the trend input must agree on names), reported as an error
// rather than silently dropped.
func (e *Engine) Fuse(
	scores []model.CategoryScore,
	text, transcript *sentiment.Corpus,
	trends []model.TrendScore,
) ([]model.FinalScore, error) {
	if len(scores) == 0 {
		return nil, eris.New("fusion: no category scores to fuse")
	}

	demand := make(map[string]float64, len(trends))
	for _, t := range trends {
		demand[t.BusinessType] = t.DemandScore
	}

	scored := make(map[string]bool)
	for i := range scores {
		scored[scores[i].Category] = true
	}
	for _, t := range trends {
		if t.DemandScore > 0 && !scored[t.BusinessType] {
			return nil, eris.Errorf("fusion: trend category %q has no category scores; lexicon and trend input disagree", t.BusinessType)
		}
	}

	scheme := e.cfg.Dual
	dualCorpus := !transcript.Empty()
	if !dualCorpus {
		scheme = e.cfg.Single
	}

	var out []model.FinalScore
	for i := range scores {
		cs := &scores[i]

		// Zero-demand categories are not worth scoring; drop the whole
		// category, not just this row.
		d, hasTrend := demand[cs.Category]
		if hasTrend && d <= 0 {
			continue
		}
		if !hasTrend {
			d = e.cfg.NeutralDemand
		}

		out = append(out, e.fuseRow(cs, text, transcript, scheme, dualCorpus, d))
	}

	sortFinal(out)

	zap.L().Info("fusion: complete",
		zap.Int("rows", len(out)),
		zap.Bool("dual_corpus", dualCorpus),
	)
	return out, nil
}

// fuseRow computes one FinalScore. Pure: identical inputs give identical
// output.
func (e *Engine) fuseRow(
	cs *model.CategoryScore,
	text, transcript *sentiment.Corpus,
	scheme config.WeightScheme,
	dualCorpus bool,
	demandScore float64,
) model.FinalScore {
	base := clamp01(cs.Composite)
	if math.IsNaN(cs.Composite) {
		base = e.cfg.NeutralRatio
	}

	textMatch := e.matcher.Match(text, cs.Lat, cs.Lon, cs.Category)

	transcriptMatch := sentiment.Match{
		LocationTag: model.NoData,
		Score:       e.cfg.NeutralRatio,
	}
	if dualCorpus {
		transcriptMatch = e.matcher.Match(transcript, cs.Lat, cs.Lon, cs.Category)
	}

	trend := demandScore / 100.0

	var raw float64
	if dualCorpus {
		raw = scheme.Business*base +
			scheme.Sentiment*textMatch.Score +
			scheme.Transcript*transcriptMatch.Score +
			scheme.Trend*trend
	} else {
		raw = scheme.Business*base +
			scheme.Sentiment*textMatch.Score +
			scheme.Trend*trend
	}

	final := round1(scheme.Floor + raw*(scheme.Ceiling-scheme.Floor))

	return model.FinalScore{
		LotID:                     cs.LotID,
		Lat:                       cs.Lat,
		Lon:                       cs.Lon,
		BusinessType:              cs.Category,
		FinalProbability:          final,
		BaseBusinessScore:         round1(base * 100),
		SentimentScore:            round1(textMatch.Score * 100),
		TranscriptSentimentScore:  round1(transcriptMatch.Score * 100),
		TrendsDemandScore:         round1(trend * 100),
		SaturationScore:           round3(cs.SaturationScore),
		MatchedLocation:           textMatch.LocationTag,
		MatchedTranscriptLocation: transcriptMatch.LocationTag,
		DistanceToSentimentKM:     round2(textMatch.DistanceKM),
		Reason:                    cs.Reason,
	}
}

// sortFinal orders rows by descending probability, then lot id, then
// category, so reruns on identical inputs are byte-identical.
func sortFinal(rows []model.FinalScore) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FinalProbability != rows[j].FinalProbability {
			return rows[i].FinalProbability > rows[j].FinalProbability
		}
		if rows[i].LotID != rows[j].LotID {
			return rows[i].LotID < rows[j].LotID
		}
		return rows[i].BusinessType < rows[j].BusinessType
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
