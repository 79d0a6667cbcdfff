package core

import (
	"testing"
)

func sampleTxns(t *testing.T) []Transaction {
	t.Helper()
	return []Transaction{
		mustTxn(t, NewDate(2024, 3, 1), -5000, "Food"),
		mustTxn(t, NewDate(2024, 3, 1), -2500, "Transport"),
		mustTxn(t, NewDate(2024, 3, 2), 200000, "Income"),
		mustTxn(t, NewDate(2024, 3, 3), -1000, "Food"),
		mustTxn(t, NewDate(2024, 4, 1), 1500, "Food"), // refund
	}
}

func TestIncomePlusExpensesEqualsNet(t *testing.T) {
	txns := sampleTxns(t)
	income := TotalIncomeOnly(txns)
	expenses := TotalExpensesOnly(txns)
	net := TotalAmount(txns)

	if income.Cents+expenses.Cents != net.Cents {
		t.Fatalf("income %d + expenses %d != net %d", income.Cents, expenses.Cents, net.Cents)
	}
	if income.Cents != 201500 {
		t.Fatalf("income = %d", income.Cents)
	}
	if expenses.Cents != -8500 {
		t.Fatalf("expenses = %d", expenses.Cents)
	}
}

func TestTotalSpendingAbsolute(t *testing.T) {
	txns := sampleTxns(t)
	if got, want := TotalSpendingAbsolute(txns).Cents, -TotalExpensesOnly(txns).Cents; got != want {
		t.Fatalf("absolute spending = %d, want %d", got, want)
	}
}

func TestTotalsByCategorySignedVsExpenseOnly(t *testing.T) {
	txns := sampleTxns(t)

	signed := TotalsByCategory(txns)
	// Food nets -5000 -1000 +1500.
	if signed["Food"].Cents != -4500 {
		t.Fatalf("signed Food = %d, want -4500", signed["Food"].Cents)
	}

	spend := ExpensesByCategory(txns)
	if spend["Food"].Cents != 6000 {
		t.Fatalf("expense-only Food = %d, want 6000", spend["Food"].Cents)
	}
	if _, ok := spend["Income"]; ok {
		t.Fatal("credit-only category must not appear in expense breakdown")
	}
}

func TestTotalsByMonth(t *testing.T) {
	txns := sampleTxns(t)
	byMonth := TotalsByMonth(txns)
	if byMonth["2024-03"].Cents != 191500 {
		t.Fatalf("2024-03 = %d", byMonth["2024-03"].Cents)
	}
	if byMonth["2024-04"].Cents != 1500 {
		t.Fatalf("2024-04 = %d", byMonth["2024-04"].Cents)
	}
}

func TestAveragePerDay(t *testing.T) {
	if got := AveragePerDay(nil); got.Cents != 0 {
		t.Fatalf("empty list average = %d", got.Cents)
	}

	txns := []Transaction{
		mustTxn(t, NewDate(2024, 3, 1), -3000, "Food"),
		mustTxn(t, NewDate(2024, 3, 1), -1000, "Food"),
		mustTxn(t, NewDate(2024, 3, 2), -2000, "Food"),
	}
	// Net -6000 over 2 distinct days.
	if got := AveragePerDay(txns); got.Cents != -3000 {
		t.Fatalf("average = %d, want -3000", got.Cents)
	}
}
