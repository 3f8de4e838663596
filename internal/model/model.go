// Package model holds the domain types shared across the scoring pipeline
// stages.
package model

// GeneralBusiness is the catch-all category for listings that match no
// lexicon keyword. It counts toward foot traffic but is never scored as a
// candidate business type.
const GeneralBusiness = "general business"

// NoData is the sentinel location tag for lots with no sentiment match.
const NoData = "no_data"

// LowConfidenceThreshold is the minimum number of source entries an
// aggregate needs before its ratio is considered stable.
const LowConfidenceThreshold = 10

// Lot is a vacant candidate site. X/Y are projected meters in the run's
// working CRS; Lat/Lon are the WGS84 centroid.
type Lot struct {
	ID     string `json:"id"`
	Street string `json:"street,omitempty"`
	Name   string `json:"name,omitempty"`

	X   float64 `json:"-"`
	Y   float64 `json:"-"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	TotalTaxes   float64 `json:"total_taxes,omitempty"`
	MedianIncome float64 `json:"median_income,omitempty"`
}

// BusinessListing is one existing business point, with its source tags
// kept for categorization.
type BusinessListing struct {
	Name string            `json:"name"`
	Tags map[string]string `json:"tags,omitempty"`

	X float64 `json:"-"`
	Y float64 `json:"-"`

	Category string `json:"category,omitempty"`
}

// CategoryScore is one (lot, business type) row from the competitive
// stage. All score fields lie in [0,1].
type CategoryScore struct {
	LotID           string  `json:"id" csv:"id"`
	Category        string  `json:"business_type" csv:"business_type"`
	SaturationScore float64 `json:"saturation_score" csv:"saturation_score"`
	TrafficScore    float64 `json:"traffic_score" csv:"traffic_score"`
	DemoScore       float64 `json:"demo_score" csv:"demo_score"`
	Composite       float64 `json:"business_score" csv:"business_score"`
	Reason          string  `json:"reason" csv:"reason"`
	Lat             float64 `json:"lat" csv:"lat"`
	Lon             float64 `json:"lon" csv:"lon"`
}

// SentimentAggregate is one externally mined (location, business type)
// sentiment record.
type SentimentAggregate struct {
	LocationTag      string  `json:"location_tag"`
	BusinessType     string  `json:"business_type"`
	PositiveRatio    float64 `json:"positive_ratio"`
	NegativeRatio    float64 `json:"negative_ratio"`
	NeutralRatio     float64 `json:"neutral_ratio"`
	OverallSentiment string  `json:"overall_sentiment"`
	AvgConfidence    float64 `json:"avg_confidence,omitempty"`
	TotalEntries     int     `json:"total_entries"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
}

// LowConfidence reports whether the aggregate rests on too few source
// entries to trust its ratio on its own.
func (a SentimentAggregate) LowConfidence() bool {
	return a.TotalEntries < LowConfidenceThreshold
}

// TrendScore is the search-demand signal for one business type, on a
// 0-100 scale.
type TrendScore struct {
	BusinessType string  `json:"business_type"`
	DemandScore  float64 `json:"demand_score"`
	SearchVolume int     `json:"search_volume,omitempty"`
}

// FinalScore is one fused output row: the calibrated probability plus the
// sub-scores that produced it, each on a 0-100 scale except saturation.
type FinalScore struct {
	LotID                     string  `json:"id" csv:"id"`
	Lat                       float64 `json:"lat" csv:"lat"`
	Lon                       float64 `json:"lon" csv:"lon"`
	BusinessType              string  `json:"business_type" csv:"business_type"`
	FinalProbability          float64 `json:"final_probability" csv:"final_probability"`
	BaseBusinessScore         float64 `json:"base_business_score" csv:"base_business_score"`
	SentimentScore            float64 `json:"sentiment_score" csv:"sentiment_score"`
	TranscriptSentimentScore  float64 `json:"transcript_sentiment_score" csv:"transcript_sentiment_score"`
	TrendsDemandScore         float64 `json:"trends_demand_score" csv:"trends_demand_score"`
	SaturationScore           float64 `json:"saturation_score" csv:"saturation_score"`
	MatchedLocation           string  `json:"matched_location" csv:"matched_location"`
	MatchedTranscriptLocation string  `json:"matched_transcript_location" csv:"matched_transcript_location"`
	DistanceToSentimentKM     float64 `json:"distance_to_sentiment_km" csv:"distance_to_sentiment_km"`
	Reason                    string  `json:"reason" csv:"reason"`
}
