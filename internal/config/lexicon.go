package config

// DefaultLexicon returns the closed set of business categories shared by the
// classifier, the sentiment corpora, and the trend input. The catch-all
// "general business" entry must stay last: classification is
// first-match-wins, and the empty keyword set never matches anything.
func DefaultLexicon() []LexiconEntry {
	return []LexiconEntry{
		{Category: "coffee shop", Keywords: []string{"coffee", "cafe", "espresso", "latte", "cappuccino"}},
		{Category: "restaurant", Keywords: []string{"restaurant", "food", "eat", "dining", "lunch", "dinner", "brunch"}},
		{Category: "pharmacy", Keywords: []string{"pharmacy", "drugstore", "prescriptions", "CVS", "Walgreens", "medicine"}},
		{Category: "grocery store", Keywords: []string{"grocery", "groceries", "supermarket", "produce", "Whole Foods", "Aldi"}},
		{Category: "bar", Keywords: []string{"bar", "drinks", "beer", "cocktails", "nightlife", "brewery", "pub"}},
		{Category: "gym", Keywords: []string{"gym", "fitness", "workout", "exercise", "yoga", "crossfit"}},
		{Category: "late night food", Keywords: []string{"late night", "2am", "midnight", "after hours", "open late"}},
		{Category: "bakery", Keywords: []string{"bakery", "bread", "pastry", "donuts", "croissant", "baked goods"}},
		{Category: "convenience store", Keywords: []string{"convenience", "corner store", "bodega", "7-eleven"}},
		{Category: "coworking space", Keywords: []string{"coworking", "cowork", "workspace", "WeWork", "shared office"}},
		{Category: "daycare", Keywords: []string{"daycare", "childcare", "nursery", "preschool", "kids"}},
		{Category: "hardware store", Keywords: []string{"hardware", "tools", "Home Depot", "lumber", "plumbing"}},
		{Category: "urgent care", Keywords: []string{"urgent care", "clinic", "walk-in", "emergency", "doctor"}},
		{Category: "general business", Keywords: nil},
	}
}

// Categories returns the lexicon's category names in order.
func Categories(lexicon []LexiconEntry) []string {
	out := make([]string, 0, len(lexicon))
	for _, e := range lexicon {
		out = append(out, e.Category)
	}
	return out
}
