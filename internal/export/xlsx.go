package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/model"
)

var finalScoreHeader = []string{
	"id", "lat", "lon", "business_type", "final_probability",
	"base_business_score", "sentiment_score", "transcript_sentiment_score",
	"trends_demand_score", "saturation_score", "matched_location",
	"matched_transcript_location", "distance_to_sentiment_km", "reason",
}

// WriteXLSX writes fused scores to a single-sheet workbook.
func WriteXLSX(path string, scores []model.FinalScore) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("opportunity_scores")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range finalScoreHeader {
		header.AddCell().Value = h
	}

	for i := range scores {
		fs := &scores[i]
		row := sheet.AddRow()
		row.AddCell().Value = fs.LotID
		row.AddCell().SetFloat(fs.Lat)
		row.AddCell().SetFloat(fs.Lon)
		row.AddCell().Value = fs.BusinessType
		row.AddCell().SetFloat(fs.FinalProbability)
		row.AddCell().SetFloat(fs.BaseBusinessScore)
		row.AddCell().SetFloat(fs.SentimentScore)
		row.AddCell().SetFloat(fs.TranscriptSentimentScore)
		row.AddCell().SetFloat(fs.TrendsDemandScore)
		row.AddCell().SetFloat(fs.SaturationScore)
		row.AddCell().Value = fs.MatchedLocation
		row.AddCell().Value = fs.MatchedTranscriptLocation
		row.AddCell().SetFloat(fs.DistanceToSentimentKM)
		row.AddCell().Value = fs.Reason
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save xlsx %s", path)
	}
	zap.L().Info("export: wrote xlsx", zap.String("path", path), zap.Int("rows", len(scores)))
	return nil
}
