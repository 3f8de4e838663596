// Package classify assigns a business category to raw listings by keyword
// matching against the configured lexicon.
package classify

import (
	"strings"

	"github.com/civiclens/lotscout/internal/config"
	"github.com/civiclens/lotscout/internal/model"
)

// osmTagKeys are the listing tag fields whose values join the name for
// keyword matching.
var osmTagKeys = []string{"amenity", "shop", "leisure", "healthcare"}

// Classifier assigns each listing to exactly one category via a
// first-match-wins scan over the ordered lexicon.
type Classifier struct {
	lexicon []config.LexiconEntry
}

// New builds a Classifier from the ordered lexicon.
func New(lexicon []config.LexiconEntry) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Categorize returns the category for a listing name plus its tag values.
// Listings matching no keyword fall through to the "general business"
// sentinel.
func (c *Classifier) Categorize(name string, tags map[string]string) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(name))
	for _, key := range osmTagKeys {
		if v := tags[key]; v != "" {
			sb.WriteString(" ")
			sb.WriteString(strings.ToLower(v))
		}
	}
	text := sb.String()

	for _, entry := range c.lexicon {
		for _, kw := range entry.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return entry.Category
			}
		}
	}
	return model.GeneralBusiness
}

// Assign sets the category on every listing in place. Categories are
// assigned exactly once; listings keep their category for the rest of the
// run.
func (c *Classifier) Assign(listings []model.BusinessListing) {
	for i := range listings {
		listings[i].Category = c.Categorize(listings[i].Name, listings[i].Tags)
	}
}
