package sheets

import (
	"testing"
	"time"
)

func TestTransactionFromRow(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		row       []any
		wantCents int64
		wantErr   bool
	}{
		{
			name:      "numeric amount cell",
			row:       []any{"2024-03-15", -12.5, "Food", "groceries"},
			wantCents: -1250,
		},
		{
			name:      "string amount with decimal comma",
			row:       []any{"2024-03-15", "-12,50", "Food", "groceries"},
			wantCents: -1250,
		},
		{
			name:      "missing description cell",
			row:       []any{"2024-03-15", "40.00", "Salary"},
			wantCents: 4000,
		},
		{
			name:    "bad date",
			row:     []any{"15/03/2024", -12.5, "Food", ""},
			wantErr: true,
		},
		{
			name:    "zero amount",
			row:     []any{"2024-03-15", "0", "Food", ""},
			wantErr: true,
		},
		{
			name:    "too few cells",
			row:     []any{"2024-03-15", -12.5},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transactionFromRow(tt.row, now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Amount.Cents != tt.wantCents {
				t.Errorf("amount = %d, want %d", got.Amount.Cents, tt.wantCents)
			}
		})
	}
}

func TestRowValuesRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	orig, err := transactionFromRow([]any{"2024-03-15", "-12,50", "Food", "groceries"}, now)
	if err != nil {
		t.Fatal(err)
	}
	back, err := transactionFromRow(rowValues(orig), now)
	if err != nil {
		t.Fatal(err)
	}
	if !back.SameRecord(orig) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, orig)
	}
}
