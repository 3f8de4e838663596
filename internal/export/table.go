package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/civiclens/lotscout/internal/model"
)

// PrintTopTable renders the top-N fused scores as a terminal table,
// followed by a best-location-per-category summary. Input is assumed
// sorted by descending probability.
func PrintTopTable(w io.Writer, scores []model.FinalScore, topN int) error {
	if len(scores) == 0 {
		_, err := fmt.Fprintln(w, "No scores to display.")
		return err
	}

	n := topN
	if n <= 0 || n > len(scores) {
		n = len(scores)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Lot", "Business Type", "Probability", "Sentiment", "Demand", "Reason"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i := 0; i < n; i++ {
		fs := &scores[i]
		data = append(data, []string{
			strconv.Itoa(i + 1),
			fs.LotID,
			fs.BusinessType,
			fmt.Sprintf("%.1f%%", fs.FinalProbability),
			fmt.Sprintf("%.1f", fs.SentimentScore),
			fmt.Sprintf("%.1f", fs.TrendsDemandScore),
			truncate(fs.Reason, 48),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing top %d of %d scored pairs\n\n", n, len(scores)); err != nil {
		return err
	}
	return printBestPerCategory(w, scores)
}

// printBestPerCategory lists each business type's single best lot.
func printBestPerCategory(w io.Writer, scores []model.FinalScore) error {
	best := make(map[string]*model.FinalScore)
	var order []string
	for i := range scores {
		fs := &scores[i]
		if _, seen := best[fs.BusinessType]; !seen {
			best[fs.BusinessType] = fs
			order = append(order, fs.BusinessType)
		}
	}

	if _, err := fmt.Fprintln(w, "Best location per business type:"); err != nil {
		return err
	}
	for _, bt := range order {
		fs := best[bt]
		if _, err := fmt.Fprintf(w, "  %-24s lot %-12s %.1f%%\n", bt, fs.LotID, fs.FinalProbability); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
