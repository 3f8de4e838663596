package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/lotscout/internal/model"
)

func tableScores() []model.FinalScore {
	return []model.FinalScore{
		{LotID: "lot-1", BusinessType: "coffee shop", FinalProbability: 78.5, SentimentScore: 80, TrendsDemandScore: 75, Reason: "High demand: no existing coffee shops nearby."},
		{LotID: "lot-2", BusinessType: "coffee shop", FinalProbability: 70.1, SentimentScore: 70, TrendsDemandScore: 75, Reason: "Moderate competition: 1 coffee shop(s) in the immediate area."},
		{LotID: "lot-1", BusinessType: "bakery", FinalProbability: 61.2, SentimentScore: 50, TrendsDemandScore: 25, Reason: "Moderate competition: 1 bakery(s) in the immediate area."},
	}
}

func TestPrintTopTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintTopTable(&buf, tableScores(), 2))

	out := buf.String()
	assert.Contains(t, out, "lot-1")
	assert.Contains(t, out, "78.5%")
	assert.Contains(t, out, "70.1%")
	assert.Contains(t, out, "Showing top 2 of 3 scored pairs")

	assert.Contains(t, out, "Best location per business type:")
	assert.Contains(t, out, "bakery")
}

func TestPrintTopTableEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintTopTable(&buf, nil, 10))
	assert.Contains(t, buf.String(), "No scores to display.")
}

func TestPrintTopTableLargeN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintTopTable(&buf, tableScores(), 100))
	assert.Contains(t, buf.String(), "Showing top 3 of 3 scored pairs")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-te", truncate("exactly-te", 10))
	assert.Equal(t, "far too...", truncate("far too long for the cell", 10))
}
