package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"tally/internal/core"
)

var csvHeader = []string{"date", "kind", "category", "amount", "description", "id"}

// WriteCSV renders transactions as CSV with a header row. Rows are written in
// the order given.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.Format("2006-01-02"),
			string(tx.Kind),
			tx.Category,
			tx.Amount.StringFixed(2),
			tx.Description,
			tx.ID.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
