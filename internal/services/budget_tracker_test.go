package services

import (
	"strings"
	"testing"

	"spendtrack/internal/core"
)

func TestBudgetForPicksActiveMatch(t *testing.T) {
	expired := foodBudget(t, 10000)
	expired.EndDate = core.NewDate(2024, 2, 1)
	current := foodBudget(t, 20000)
	current.StartDate = core.NewDate(2024, 2, 2)

	bt := NewBudgetTracker([]core.Budget{expired, current})

	got, ok := bt.BudgetFor("food", core.NewDate(2024, 3, 15))
	if !ok || got.MonthlyLimit.Cents != 20000 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if _, ok := bt.BudgetFor("Transport", core.NewDate(2024, 3, 15)); ok {
		t.Fatal("unexpected budget for unbudgeted category")
	}
}

func TestStatusForMonth(t *testing.T) {
	bt := NewBudgetTracker([]core.Budget{foodBudget(t, 20000)})
	txns := []core.Transaction{
		mustTxn(t, core.NewDate(2024, 3, 5), -15000, "Food"),
		mustTxn(t, core.NewDate(2024, 3, 6), -10000, "Food"),
	}

	statuses := bt.StatusForMonth(2024, 3, txns)
	if len(statuses) != 1 {
		t.Fatalf("statuses = %+v", statuses)
	}
	st := statuses[0]
	if st.Spent != 25000 || st.Remaining != -5000 || !st.OverBudget {
		t.Fatalf("status = %+v", st)
	}
	if st.PercentUsed != 125.0 {
		t.Fatalf("percent = %v", st.PercentUsed)
	}
}

func TestWarningBoundaries(t *testing.T) {
	bt := NewBudgetTracker([]core.Budget{foodBudget(t, 20000)})
	existing := []core.Transaction{
		mustTxn(t, core.NewDate(2024, 3, 5), -10000, "Food"),
	}

	// Projects to exactly 80%.
	warn := bt.WarningFor(mustTxn(t, core.NewDate(2024, 3, 10), -6000, "Food"), existing, "$")
	if warn == "" {
		t.Fatal("expected warning at the 80% threshold")
	}

	// Projects to 79.5%: below the threshold.
	warn = bt.WarningFor(mustTxn(t, core.NewDate(2024, 3, 10), -5900, "Food"), existing, "$")
	if warn != "" {
		t.Fatalf("unexpected warning below threshold: %q", warn)
	}

	// Projects to exactly the limit: warned but not over.
	warn = bt.WarningFor(mustTxn(t, core.NewDate(2024, 3, 10), -10000, "Food"), existing, "$")
	if warn == "" || !strings.Contains(warn, "100%") {
		t.Fatalf("warning = %q", warn)
	}

	// One cent over the limit.
	warn = bt.WarningFor(mustTxn(t, core.NewDate(2024, 3, 10), -10001, "Food"), existing, "$")
	if !strings.Contains(warn, "over your Food budget") {
		t.Fatalf("warning = %q", warn)
	}
}
