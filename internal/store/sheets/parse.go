package sheets

import (
	"fmt"
	"strings"
	"time"

	"spendtrack/internal/core"
)

type nowFunc func() time.Time

func timeNow() time.Time { return time.Now() }

// transactionFromRow converts one worksheet row into a transaction.
// Cells arrive as strings or numbers depending on how the sheet
// formats them; both are accepted.
func transactionFromRow(row []any, now time.Time) (core.Transaction, error) {
	if len(row) < 3 {
		return core.Transaction{}, fmt.Errorf("row has %d cells, need at least 3", len(row))
	}
	rec := core.Record{
		"Date":     cellString(row[0]),
		"Amount":   row[1],
		"Category": cellString(row[2]),
	}
	if len(row) >= 4 {
		rec["Description"] = cellString(row[3])
	}
	return core.TransactionFromRecord(rec, now)
}

func cellString(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}
