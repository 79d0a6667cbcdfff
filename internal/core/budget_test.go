package core

import (
	"testing"
	"time"
)

func mustTxn(t *testing.T, date Date, cents int64, category string) Transaction {
	t.Helper()
	tx, err := NewTransaction(date, Money{Cents: cents}, category, "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestNewBudgetValidation(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := NewBudget("Food", Money{Cents: 20000}, NewDate(2024, 1, 1), Date{}, now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name     string
		category string
		limit    Money
		start    Date
		end      Date
	}{
		{"zero limit", "Food", Money{}, NewDate(2024, 1, 1), Date{}},
		{"negative limit", "Food", Money{Cents: -100}, NewDate(2024, 1, 1), Date{}},
		{"empty category", "", Money{Cents: 100}, NewDate(2024, 1, 1), Date{}},
		{"end equals start", "Food", Money{Cents: 100}, NewDate(2024, 1, 1), NewDate(2024, 1, 1)},
		{"end before start", "Food", Money{Cents: 100}, NewDate(2024, 2, 1), NewDate(2024, 1, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBudget(tc.category, tc.limit, tc.start, tc.end, now)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestBudgetActiveOn(t *testing.T) {
	b := Budget{
		Category:     "Food",
		MonthlyLimit: Money{Cents: 20000},
		StartDate:    NewDate(2024, 1, 15),
		EndDate:      NewDate(2024, 6, 30),
		Active:       true,
	}

	cases := []struct {
		date Date
		want bool
	}{
		{NewDate(2024, 1, 14), false},
		{NewDate(2024, 1, 15), true},
		{NewDate(2024, 3, 1), true},
		{NewDate(2024, 6, 30), true},
		{NewDate(2024, 7, 1), false},
	}
	for i, tc := range cases {
		if got := b.ActiveOn(tc.date); got != tc.want {
			t.Fatalf("case %d: ActiveOn(%s) = %v, want %v", i, tc.date, got, tc.want)
		}
	}

	b.Active = false
	if b.ActiveOn(NewDate(2024, 3, 1)) {
		t.Fatal("inactive budget must never be active")
	}

	b.Active = true
	b.EndDate = Date{}
	if !b.ActiveOn(NewDate(2030, 1, 1)) {
		t.Fatal("budget without end date stays active indefinitely")
	}
}

func TestBudgetSpendingIgnoresCredits(t *testing.T) {
	b := Budget{Category: "Food", MonthlyLimit: Money{Cents: 20000}, StartDate: NewDate(2024, 1, 1), Active: true}
	txns := []Transaction{
		mustTxn(t, NewDate(2024, 3, 5), -5000, "Food"),
		mustTxn(t, NewDate(2024, 3, 10), 100000, "Food"), // refund, must not offset
		mustTxn(t, NewDate(2024, 3, 12), -3000, "food"),  // case-insensitive match
		mustTxn(t, NewDate(2024, 4, 1), -9900, "Food"),   // wrong month
		mustTxn(t, NewDate(2024, 3, 20), -1500, "Transport"),
	}

	spent := b.SpendingForMonth(2024, 3, txns)
	if spent.Cents != 8000 {
		t.Fatalf("expected 8000 cents spent, got %d", spent.Cents)
	}
}

func TestBudgetRemainingAndPercent(t *testing.T) {
	b := Budget{Category: "Food", MonthlyLimit: Money{Cents: 20000}, StartDate: NewDate(2024, 1, 1), Active: true}
	txns := []Transaction{
		mustTxn(t, NewDate(2024, 3, 5), -8000, "Food"),
		mustTxn(t, NewDate(2024, 3, 6), -9000, "Food"),
	}

	if got := b.Remaining(2024, 3, txns); got.Cents != 3000 {
		t.Fatalf("remaining = %d, want 3000", got.Cents)
	}
	if b.OverBudget(2024, 3, txns) {
		t.Fatal("not over budget yet")
	}
	if got := b.PercentUsed(2024, 3, txns); got != 85.0 {
		t.Fatalf("percent = %v, want 85", got)
	}

	txns = append(txns, mustTxn(t, NewDate(2024, 3, 7), -4000, "Food"))
	if !b.OverBudget(2024, 3, txns) {
		t.Fatal("expected over budget")
	}
	if got := b.Remaining(2024, 3, txns); got.Cents != -1000 {
		t.Fatalf("remaining = %d, want -1000", got.Cents)
	}

	// Defensive guard against externally mutated limits.
	b.MonthlyLimit = Money{}
	if got := b.PercentUsed(2024, 3, txns); got != 0 {
		t.Fatalf("percent with zero limit = %v, want 0", got)
	}
}
