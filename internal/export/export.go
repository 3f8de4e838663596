// Package export writes pipeline results to CSV, JSON, and XLSX files and
// renders the terminal summary table.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civiclens/lotscout/internal/model"
)

// WriteCSV marshals rows to a CSV file using the struct csv tags.
func WriteCSV(path string, rows any) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "export: marshal csv %s", path)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	zap.L().Info("export: wrote csv", zap.String("path", path))
	return nil
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(path string, rows any) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "export: marshal json %s", path)
	}
	data = append(data, '\n')
	if err := writeFile(path, data); err != nil {
		return err
	}
	zap.L().Info("export: wrote json", zap.String("path", path))
	return nil
}

// ReadCategoryScores loads the competitive-stage CSV back into memory for
// the fusion stage.
func ReadCategoryScores(path string) ([]model.CategoryScore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read scores %s", path)
	}
	var scores []model.CategoryScore
	if err := csvutil.Unmarshal(data, &scores); err != nil {
		return nil, eris.Wrapf(err, "export: parse scores %s", path)
	}
	return scores, nil
}

// ReadFinalScores loads a fused-output CSV, used by validation.
func ReadFinalScores(path string) ([]model.FinalScore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read final scores %s", path)
	}
	var scores []model.FinalScore
	if err := csvutil.Unmarshal(data, &scores); err != nil {
		return nil, eris.Wrapf(err, "export: parse final scores %s", path)
	}
	return scores, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: mkdir %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
