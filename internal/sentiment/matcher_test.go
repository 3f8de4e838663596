package sentiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func sentimentCfg() config.SentimentConfig {
	return config.SentimentConfig{
		MaxDistanceKM:    15,
		DecayRampKM:      20,
		NoDataDistanceKM: 999,
	}
}

func TestHaversine(t *testing.T) {
	t.Parallel()

	t.Run("zero distance for identical points", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 0, Haversine(41.6, -87.05, 41.6, -87.05), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()
		d1 := Haversine(41.6, -87.05, 41.88, -87.63)
		d2 := Haversine(41.88, -87.63, 41.6, -87.05)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		t.Parallel()
		// Gary, IN to downtown Chicago is roughly 39 km.
		d := Haversine(41.6, -87.35, 41.88, -87.63)
		assert.InDelta(t, 39, d, 2)
	})

	t.Run("one degree latitude", func(t *testing.T) {
		t.Parallel()
		d := Haversine(41, -87, 42, -87)
		assert.InDelta(t, 111.2, d, 0.5)
	})
}

func TestMatch(t *testing.T) {
	t.Parallel()

	m := NewMatcher(sentimentCfg())

	near := model.SentimentAggregate{
		LocationTag:   "downtown",
		BusinessType:  "coffee shop",
		PositiveRatio: 0.8,
		TotalEntries:  50,
		Lat:           41.60,
		Lon:           -87.05,
	}
	far := model.SentimentAggregate{
		LocationTag:   "lakefront",
		BusinessType:  "coffee shop",
		PositiveRatio: 0.2,
		TotalEntries:  5,
		Lat:           42.5,
		Lon:           -86.0,
	}
	corpus := NewCorpus("text", []model.SentimentAggregate{far, near})

	t.Run("nil corpus gives neutral no-data", func(t *testing.T) {
		t.Parallel()
		got := m.Match(nil, 41.6, -87.05, "coffee shop")
		assert.Equal(t, model.NoData, got.LocationTag)
		assert.Equal(t, 0.5, got.Score)
		assert.Equal(t, 999.0, got.DistanceKM)
	})

	t.Run("unknown business type gives neutral no-data", func(t *testing.T) {
		t.Parallel()
		got := m.Match(corpus, 41.6, -87.05, "bakery")
		assert.Equal(t, model.NoData, got.LocationTag)
		assert.Equal(t, 0.5, got.Score)
	})

	t.Run("nearest candidate wins", func(t *testing.T) {
		t.Parallel()
		got := m.Match(corpus, 41.601, -87.051, "coffee shop")
		assert.Equal(t, "downtown", got.LocationTag)
		assert.InDelta(t, 0.8, got.Score, 1e-9)
		assert.Less(t, got.DistanceKM, 1.0)
		assert.False(t, got.LowConfidence)
	})

	t.Run("low confidence flag carried from aggregate", func(t *testing.T) {
		t.Parallel()
		got := m.Match(corpus, 42.5, -86.0, "coffee shop")
		assert.Equal(t, "lakefront", got.LocationTag)
		assert.True(t, got.LowConfidence)
	})
}

func TestDecay(t *testing.T) {
	t.Parallel()

	m := NewMatcher(sentimentCfg())

	tests := []struct {
		name     string
		score    float64
		distance float64
		expected float64
	}{
		{name: "within threshold unchanged", score: 0.9, distance: 15, expected: 0.9},
		{name: "halfway along ramp", score: 0.9, distance: 25, expected: 0.7},
		{name: "end of ramp fully neutral", score: 0.9, distance: 35, expected: 0.5},
		{name: "beyond ramp stays neutral", score: 0.1, distance: 100, expected: 0.5},
		{name: "neutral score unaffected", score: 0.5, distance: 50, expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, m.decay(tt.score, tt.distance), 1e-9)
		})
	}
}

func TestLoadCorpus(t *testing.T) {
	t.Parallel()

	t.Run("empty path gives nil corpus", func(t *testing.T) {
		t.Parallel()
		c, err := LoadCorpus("", "text")
		require.NoError(t, err)
		assert.True(t, c.Empty())
	})

	t.Run("missing file gives nil corpus", func(t *testing.T) {
		t.Parallel()
		c, err := LoadCorpus(filepath.Join(t.TempDir(), "absent.json"), "text")
		require.NoError(t, err)
		assert.True(t, c.Empty())
	})

	t.Run("malformed json errors", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := LoadCorpus(path, "text")
		assert.Error(t, err)
	})

	t.Run("valid corpus loads and indexes", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "corpus.json")
		payload := `[
			{"location_tag": "downtown", "business_type": "bar", "positive_ratio": 0.7, "total_entries": 12, "lat": 41.6, "lon": -87.0},
			{"location_tag": "midtown", "business_type": "bar", "positive_ratio": 0.4, "total_entries": 3, "lat": 41.7, "lon": -87.1}
		]`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		c, err := LoadCorpus(path, "text")
		require.NoError(t, err)
		require.False(t, c.Empty())

		m := NewMatcher(sentimentCfg())
		got := m.Match(c, 41.6, -87.0, "bar")
		assert.Equal(t, "downtown", got.LocationTag)
		assert.InDelta(t, 0.7, got.Score, 1e-9)
	})
}
