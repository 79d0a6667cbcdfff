package core

import "testing"

func TestFilterByCategory(t *testing.T) {
	txns := []Transaction{
		mustTxn(t, NewDate(2024, 1, 1), -100, "Food"),
		mustTxn(t, NewDate(2024, 1, 2), -200, "food"),
		mustTxn(t, NewDate(2024, 1, 3), -300, "Transport"),
	}
	got := FilterByCategory(txns, "FOOD")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestFilterByAmountRangeInclusive(t *testing.T) {
	txns := []Transaction{
		mustTxn(t, NewDate(2024, 1, 1), -5000, "a"),
		mustTxn(t, NewDate(2024, 1, 1), -2000, "a"),
		mustTxn(t, NewDate(2024, 1, 1), 1000, "a"),
	}
	got := FilterByAmountRange(txns, Money{Cents: -5000}, Money{Cents: -2000})
	if len(got) != 2 {
		t.Fatalf("expected inclusive bounds to keep 2, got %d", len(got))
	}
}

func TestFilterByDateRangeInclusive(t *testing.T) {
	txns := []Transaction{
		mustTxn(t, NewDate(2023, 12, 31), -100, "a"),
		mustTxn(t, NewDate(2024, 1, 1), -100, "a"),
		mustTxn(t, NewDate(2024, 1, 31), -100, "a"),
		mustTxn(t, NewDate(2024, 2, 1), -100, "a"),
	}
	got := FilterByDateRange(txns, NewDate(2024, 1, 1), NewDate(2024, 1, 31))
	if len(got) != 2 {
		t.Fatalf("expected 2 in January, got %d", len(got))
	}
}

func TestFilterByMonth(t *testing.T) {
	txns := []Transaction{
		mustTxn(t, NewDate(2024, 1, 15), -100, "a"),
		mustTxn(t, NewDate(2023, 1, 15), -100, "a"),
		mustTxn(t, NewDate(2024, 2, 15), -100, "a"),
	}
	got := FilterByMonth(txns, 2024, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
}

func TestFilterByDescription(t *testing.T) {
	mk := func(desc string) Transaction {
		tx := mustTxn(t, NewDate(2024, 1, 1), -100, "a")
		tx.Description = desc
		return tx
	}
	txns := []Transaction{mk("Weekly Groceries"), mk("gym membership"), mk("")}

	if got := FilterByDescription(txns, "groceries"); len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	// Empty term matches everything, mirroring substring semantics.
	if got := FilterByDescription(txns, ""); len(got) != 3 {
		t.Fatalf("expected 3 matches for empty term, got %d", len(got))
	}
}
