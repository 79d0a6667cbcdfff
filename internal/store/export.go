package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spendtrack/internal/core"
)

// WriteExport serializes txns to path in the given format. Backends
// share this so exports look identical regardless of where the data
// lives.
func WriteExport(txns []core.Transaction, format ExportFormat, path string) (string, error) {
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	switch format {
	case ExportCSV:
		if err := writeCSV(txns, path); err != nil {
			return "", err
		}
	case ExportJSON:
		if err := writeJSON(txns, path); err != nil {
			return "", err
		}
	}
	return path, nil
}

func writeCSV(txns []core.Transaction, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Amount", "Category", "Description"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		row := []string{
			t.Date.String(),
			fmt.Sprintf("%.2f", t.Amount.Float()),
			t.Category,
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(txns []core.Transaction, path string) error {
	records := make([]core.Record, 0, len(txns))
	for _, t := range txns {
		records = append(records, t.ToRecord())
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
