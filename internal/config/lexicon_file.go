package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadLexiconFile reads a lexicon override from a YAML file. The file has
// a top-level "lexicon" key holding the ordered category list. Entries
// keep their file order; a catch-all entry is appended when the file
// omits one.
func LoadLexiconFile(path string) ([]LexiconEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read lexicon %s", path)
	}

	var wrapper struct {
		Lexicon []LexiconEntry `yaml:"lexicon"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: parse lexicon")
	}
	if len(wrapper.Lexicon) == 0 {
		return nil, eris.Errorf("config: lexicon file %s has no entries", path)
	}

	hasCatchAll := false
	for _, e := range wrapper.Lexicon {
		if e.Category == "" {
			return nil, eris.Errorf("config: lexicon file %s has an entry with no category", path)
		}
		if e.Category == "general business" {
			hasCatchAll = true
		}
	}
	if !hasCatchAll {
		wrapper.Lexicon = append(wrapper.Lexicon, LexiconEntry{Category: "general business"})
	}

	return wrapper.Lexicon, nil
}
