package core

import (
	"fmt"
	"strings"
	"time"
)

// Record is the raw shape a storage backend hands back for one
// transaction. Field naming is backend-specific: spreadsheet backends
// use capitalized column headers ("Date", "Amount"), file and database
// backends use lowercase keys. Conversion accepts both.
type Record map[string]any

// ToRecord converts the transaction to the lowercase-key record shape.
// The amount travels in whole currency units, matching what spreadsheet
// cells hold.
func (t Transaction) ToRecord() Record {
	return Record{
		"id":          t.ID,
		"date":        t.Date.String(),
		"amount":      t.Amount.Float(),
		"category":    t.Category,
		"description": t.Description,
		"created_at":  t.CreatedAt.Format(time.RFC3339),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339),
	}
}

// TransactionFromRecord builds a validated transaction from a raw
// backend record, tolerating both capitalized and lowercase field names
// and amounts delivered as floats, ints or decimal strings. Records
// without an id get a fresh one.
func TransactionFromRecord(rec Record, now time.Time) (Transaction, error) {
	dateStr := recordString(rec, "Date", "date")
	date, err := ParseDate(dateStr)
	if err != nil {
		return Transaction{}, validationError(fmt.Errorf("record date %q: %w", dateStr, ErrInvalidDate))
	}

	amount, err := recordAmount(rec)
	if err != nil {
		return Transaction{}, validationError(err)
	}

	t, err := NewTransaction(date, amount,
		recordString(rec, "Category", "category"),
		recordString(rec, "Description", "description"),
		now)
	if err != nil {
		return Transaction{}, err
	}

	if id := recordString(rec, "id", "ID"); id != "" {
		t.ID = id
	}
	if created := recordString(rec, "created_at", "Created At"); created != "" {
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			t.CreatedAt = ts
		}
	}
	if updated := recordString(rec, "updated_at", "Updated At"); updated != "" {
		if ts, err := time.Parse(time.RFC3339, updated); err == nil {
			t.UpdatedAt = ts
		}
	}
	return t, nil
}

func recordString(rec Record, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			switch s := v.(type) {
			case string:
				return strings.TrimSpace(s)
			case fmt.Stringer:
				return strings.TrimSpace(s.String())
			}
		}
	}
	return ""
}

func recordAmount(rec Record) (Money, error) {
	for _, k := range []string{"Amount", "amount"} {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch a := v.(type) {
		case float64:
			return MoneyFromFloat(a), nil
		case float32:
			return MoneyFromFloat(float64(a)), nil
		case int:
			return Money{Cents: int64(a) * 100}, nil
		case int64:
			return Money{Cents: a * 100}, nil
		case string:
			cents, err := ParseSignedDecimalToCents(a)
			if err != nil {
				return Money{}, fmt.Errorf("record amount %q: %w", a, err)
			}
			return Money{Cents: cents}, nil
		}
	}
	return Money{}, ErrInvalidAmount
}
