package core

// Aggregates over transaction lists. All totals are in cents; signed
// totals keep the expense-negative convention, so for any list
// TotalIncomeOnly + TotalExpensesOnly == TotalAmount.

// TotalAmount is the signed net sum.
func TotalAmount(txns []Transaction) Money {
	var cents int64
	for _, t := range txns {
		cents += t.Amount.Cents
	}
	return Money{Cents: cents}
}

// TotalIncomeOnly sums positive amounts.
func TotalIncomeOnly(txns []Transaction) Money {
	var cents int64
	for _, t := range txns {
		if t.Amount.IsCredit() {
			cents += t.Amount.Cents
		}
	}
	return Money{Cents: cents}
}

// TotalExpensesOnly sums negative amounts; the result stays negative.
func TotalExpensesOnly(txns []Transaction) Money {
	var cents int64
	for _, t := range txns {
		if t.Amount.IsExpense() {
			cents += t.Amount.Cents
		}
	}
	return Money{Cents: cents}
}

// TotalSpendingAbsolute is the absolute value of TotalExpensesOnly.
func TotalSpendingAbsolute(txns []Transaction) Money {
	return TotalExpensesOnly(txns).Abs()
}

// TotalsByCategory maps category to its signed net total. A category
// holding both expenses and credits nets them together here; use
// ExpensesByCategory when true spend is needed.
func TotalsByCategory(txns []Transaction) map[string]Money {
	out := make(map[string]Money)
	for _, t := range txns {
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// ExpensesByCategory maps category to its absolute expense-only total,
// ignoring credits entirely.
func ExpensesByCategory(txns []Transaction) map[string]Money {
	out := make(map[string]Money)
	for _, t := range txns {
		if t.Amount.IsExpense() {
			out[t.Category] = out[t.Category].Add(t.Amount.Abs())
		}
	}
	return out
}

// TotalsByMonth maps the YYYY-MM token to the signed net total.
func TotalsByMonth(txns []Transaction) map[string]Money {
	out := make(map[string]Money)
	for _, t := range txns {
		key := t.Date.MonthKey()
		out[key] = out[key].Add(t.Amount)
	}
	return out
}

// AveragePerDay divides the signed net total by the number of distinct
// dates carrying at least one transaction. Zero for an empty list.
func AveragePerDay(txns []Transaction) Money {
	if len(txns) == 0 {
		return Money{}
	}
	days := make(map[string]struct{})
	for _, t := range txns {
		days[t.Date.String()] = struct{}{}
	}
	total := TotalAmount(txns)
	return Money{Cents: total.Cents / int64(len(days))}
}
