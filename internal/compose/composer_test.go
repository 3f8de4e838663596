package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/competitive"
	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestCompose(t *testing.T) {
	t.Parallel()

	lexicon := config.DefaultLexicon()
	eng := competitive.NewEngine(analysisCfg())
	c := NewComposer(eng, composeCfg(), lexicon)

	metrics := []competitive.LotMetrics{
		{
			LotID:            "lot-1",
			Lat:              41.6,
			Lon:              -87.05,
			CompetitorCounts: map[string]int{"coffee shop": 1},
			TrafficScore:     1.0,
			DemoScore:        0.5,
			IncomeRatio:      1,
			TaxRatio:         1,
		},
		{
			LotID:            "lot-2",
			CompetitorCounts: map[string]int{},
			IncomeRatio:      1,
			TaxRatio:         1,
		},
	}

	scores := c.Compose(metrics)

	// Every lot scores every category except the catch-all.
	require.Len(t, scores, 2*(len(lexicon)-1))
	for _, s := range scores {
		assert.NotEqual(t, model.GeneralBusiness, s.Category)
		assert.NoError(t, model.ValidateCategoryScore(&s))
	}

	// Rows follow lot order then lexicon order.
	assert.Equal(t, "lot-1", scores[0].LotID)
	assert.Equal(t, "coffee shop", scores[0].Category)
	assert.Equal(t, "restaurant", scores[1].Category)
	assert.Equal(t, "lot-2", scores[len(lexicon)-1].LotID)

	// lot-1 coffee shop: one competitor steps saturation to 0.7, linear
	// blend averages the three sub-scores.
	cs := scores[0]
	assert.InDelta(t, 0.7, cs.SaturationScore, 1e-9)
	assert.InDelta(t, 1.0, cs.TrafficScore, 1e-9)
	assert.InDelta(t, 0.5, cs.DemoScore, 1e-9)
	assert.InDelta(t, (0.7+1.0+0.5)/3, cs.Composite, 1e-9)
	assert.Contains(t, cs.Reason, "Moderate competition: 1 coffee shop(s)")
	assert.Equal(t, 41.6, cs.Lat)
	assert.Equal(t, -87.05, cs.Lon)

	// lot-1 bakery: no competitors.
	bakery := scores[7]
	assert.Equal(t, "bakery", bakery.Category)
	assert.InDelta(t, 1.0, bakery.SaturationScore, 1e-9)
	assert.Contains(t, bakery.Reason, "High demand: no existing bakerys nearby.")
}

func TestComposeDeterministic(t *testing.T) {
	t.Parallel()

	eng := competitive.NewEngine(analysisCfg())
	c := NewComposer(eng, composeCfg(), config.DefaultLexicon())

	metrics := []competitive.LotMetrics{
		{LotID: "a", CompetitorCounts: map[string]int{"bar": 2}, TrafficScore: 0.3, DemoScore: 0.9},
		{LotID: "b", CompetitorCounts: map[string]int{}, TrafficScore: 0.1, DemoScore: 0.2},
	}

	first := c.Compose(metrics)
	second := c.Compose(metrics)
	assert.Equal(t, first, second)
}
