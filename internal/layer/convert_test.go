package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLots(t *testing.T) {
	t.Parallel()

	l := &Layer{Features: []Feature{
		{
			ID:    "lot-1",
			Props: map[string]any{"street": "500 Broadway", "name": "Old Depot"},
			Lat:   41.6, Lon: -87.35, X: 470000, Y: 4605000,
		},
		{
			ID:    "lot-2",
			Props: map[string]any{"address": "12 Oak Ave"},
		},
	}}

	lots := Lots(l)
	require.Len(t, lots, 2)

	assert.Equal(t, "lot-1", lots[0].ID)
	assert.Equal(t, "500 Broadway", lots[0].Street)
	assert.Equal(t, "Old Depot", lots[0].Name)
	assert.Equal(t, 41.6, lots[0].Lat)
	assert.Equal(t, 470000.0, lots[0].X)

	// Alternate address attribute is picked up.
	assert.Equal(t, "12 Oak Ave", lots[1].Street)
	assert.Equal(t, "", lots[1].Name)
}

func TestListings(t *testing.T) {
	t.Parallel()

	l := &Layer{Features: []Feature{
		{
			ID: "b1",
			Props: map[string]any{
				"name":    "Joe's Coffee",
				"amenity": "cafe",
				"floors":  2.0,
				"misc":    []string{"ignored"},
			},
			X: 470010, Y: 4605010,
		},
	}}

	listings := Listings(l)
	require.Len(t, listings, 1)

	b := listings[0]
	assert.Equal(t, "Joe's Coffee", b.Name)
	assert.Equal(t, "cafe", b.Tags["amenity"])
	assert.Equal(t, "2", b.Tags["floors"])
	assert.NotContains(t, b.Tags, "misc")
	assert.Equal(t, 470010.0, b.X)
	assert.Empty(t, b.Category)
}
