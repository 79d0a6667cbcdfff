package services

import (
	"fmt"
	"strings"

	"spendtrack/internal/core"
)

// BudgetTracker answers budget questions against a fixed set of
// configured budgets. It holds no transactions itself; callers hand in
// the current list.
type BudgetTracker struct {
	budgets []core.Budget
}

func NewBudgetTracker(budgets []core.Budget) *BudgetTracker {
	return &BudgetTracker{budgets: budgets}
}

// BudgetFor returns the first budget active for the category on the
// given date.
func (bt *BudgetTracker) BudgetFor(category string, d core.Date) (core.Budget, bool) {
	for _, b := range bt.budgets {
		if strings.EqualFold(b.Category, category) && b.ActiveOn(d) {
			return b, true
		}
	}
	return core.Budget{}, false
}

// ActiveOn returns every budget active on the given date.
func (bt *BudgetTracker) ActiveOn(d core.Date) []core.Budget {
	var out []core.Budget
	for _, b := range bt.budgets {
		if b.ActiveOn(d) {
			out = append(out, b)
		}
	}
	return out
}

// BudgetStatus is the per-category standing for one month.
type BudgetStatus struct {
	BudgetID    string  `json:"budget_id"`
	Category    string  `json:"category"`
	Limit       int64   `json:"limit_cents"`
	Spent       int64   `json:"spent_cents"`
	Remaining   int64   `json:"remaining_cents"`
	PercentUsed float64 `json:"percent_used"`
	OverBudget  bool    `json:"over_budget"`
}

// StatusForMonth reports the standing of every budget active in the
// given month.
func (bt *BudgetTracker) StatusForMonth(year, month int, txns []core.Transaction) []BudgetStatus {
	first, _ := core.MonthRange(year, month)
	var out []BudgetStatus
	for _, b := range bt.budgets {
		if !b.ActiveOn(first) {
			continue
		}
		spent := b.SpendingForMonth(year, month, txns)
		out = append(out, BudgetStatus{
			BudgetID:    b.ID,
			Category:    b.Category,
			Limit:       b.MonthlyLimit.Cents,
			Spent:       spent.Cents,
			Remaining:   b.Remaining(year, month, txns).Cents,
			PercentUsed: b.PercentUsed(year, month, txns),
			OverBudget:  b.OverBudget(year, month, txns),
		})
	}
	return out
}

// warnThresholdPercent is where pre-write budget warnings start.
const warnThresholdPercent = 80.0

// WarningFor returns a human-readable warning when adding txn would
// reach the warning threshold or exceed the category's budget for that
// month. Empty when no budget applies or the transaction is a credit.
func (bt *BudgetTracker) WarningFor(txn core.Transaction, existing []core.Transaction, symbol string) string {
	if !txn.Amount.IsExpense() {
		return ""
	}
	b, ok := bt.BudgetFor(txn.Category, txn.Date)
	if !ok {
		return ""
	}

	spent := b.SpendingForMonth(txn.Date.Year(), txn.Date.Month(), existing)
	projected := spent.Cents + txn.Amount.Abs().Cents
	limit := b.MonthlyLimit.Cents

	if projected > limit {
		over := core.Money{Cents: projected - limit}
		return fmt.Sprintf("warning: this puts you %s over your %s budget of %s",
			over.Format(symbol), b.Category, b.FormatLimit(symbol))
	}
	percent := float64(projected) / float64(limit) * 100
	if percent >= warnThresholdPercent {
		return fmt.Sprintf("note: you have used %.0f%% of your %s budget of %s",
			percent, b.Category, b.FormatLimit(symbol))
	}
	return ""
}
