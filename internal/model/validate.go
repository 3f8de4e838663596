package model

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrOutOfRange flags a score field outside its documented range.
var ErrOutOfRange = errors.New("score out of range")

// ValidateCategoryScore checks that every ratio-typed field of a
// competitive-stage row lies in [0,1].
func ValidateCategoryScore(cs *CategoryScore) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"saturation_score", cs.SaturationScore},
		{"traffic_score", cs.TrafficScore},
		{"demo_score", cs.DemoScore},
		{"business_score", cs.Composite},
	} {
		if f.v < 0 || f.v > 1 {
			return eris.Wrapf(ErrOutOfRange, "model: %s/%s %s=%v", cs.LotID, cs.Category, f.name, f.v)
		}
	}
	return nil
}

// ValidateFinalScore checks that a fused row's probability stays inside
// the calibration bounds and its sub-scores inside their 0-100 scales.
func ValidateFinalScore(fs *FinalScore, floor, ceiling float64) error {
	if fs.FinalProbability < floor || fs.FinalProbability > ceiling {
		return eris.Wrapf(ErrOutOfRange, "model: %s/%s final_probability=%v outside [%v,%v]",
			fs.LotID, fs.BusinessType, fs.FinalProbability, floor, ceiling)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"base_business_score", fs.BaseBusinessScore},
		{"sentiment_score", fs.SentimentScore},
		{"transcript_sentiment_score", fs.TranscriptSentimentScore},
		{"trends_demand_score", fs.TrendsDemandScore},
	} {
		if f.v < 0 || f.v > 100 {
			return eris.Wrapf(ErrOutOfRange, "model: %s/%s %s=%v", fs.LotID, fs.BusinessType, f.name, f.v)
		}
	}
	if fs.SaturationScore < 0 || fs.SaturationScore > 1 {
		return eris.Wrapf(ErrOutOfRange, "model: %s/%s saturation_score=%v", fs.LotID, fs.BusinessType, fs.SaturationScore)
	}
	return nil
}
