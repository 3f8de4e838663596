package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	c := New(config.DefaultLexicon())

	tests := []struct {
		name     string
		biz      string
		tags     map[string]string
		expected string
	}{
		{
			name:     "name keyword match",
			biz:      "Joe's Coffee House",
			expected: "coffee shop",
		},
		{
			name:     "case insensitive",
			biz:      "ESPRESSO BAR DOWNTOWN",
			expected: "coffee shop",
		},
		{
			name:     "tag value match",
			biz:      "Corner Spot",
			tags:     map[string]string{"amenity": "pharmacy"},
			expected: "pharmacy",
		},
		{
			name:     "shop tag match",
			biz:      "Fresh Mart",
			tags:     map[string]string{"shop": "supermarket"},
			expected: "grocery store",
		},
		{
			name:     "first match wins over later categories",
			biz:      "Cafe Restaurant",
			expected: "coffee shop",
		},
		{
			name:     "no keyword falls through",
			biz:      "Smith & Sons Accounting",
			expected: model.GeneralBusiness,
		},
		{
			name:     "empty name and tags",
			biz:      "",
			expected: model.GeneralBusiness,
		},
		{
			name:     "irrelevant tag keys ignored",
			biz:      "Unmarked",
			tags:     map[string]string{"building": "coffee"},
			expected: model.GeneralBusiness,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, c.Categorize(tt.biz, tt.tags))
		})
	}
}

func TestAssign(t *testing.T) {
	t.Parallel()

	c := New(config.DefaultLexicon())
	listings := []model.BusinessListing{
		{Name: "Sunrise Bakery"},
		{Name: "24h Gym"},
		{Name: "Nondescript LLC"},
	}

	c.Assign(listings)

	assert.Equal(t, "bakery", listings[0].Category)
	assert.Equal(t, "gym", listings[1].Category)
	assert.Equal(t, model.GeneralBusiness, listings[2].Category)
}
