package core

import "strings"

// Pure, side-effect-free filters over transaction lists. Each returns a
// fresh slice and never mutates its input.

// FilterByCategory keeps transactions whose category matches
// case-insensitively.
func FilterByCategory(txns []Transaction, category string) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByAmountRange keeps transactions with min <= amount <= max,
// bounds inclusive, compared on the signed amount.
func FilterByAmountRange(txns []Transaction, min, max Money) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if t.Amount.Cents >= min.Cents && t.Amount.Cents <= max.Cents {
			out = append(out, t)
		}
	}
	return out
}

// FilterByDateRange keeps transactions dated within [start, end]
// inclusive.
func FilterByDateRange(txns []Transaction, start, end Date) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if t.Date.Between(start, end) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByMonth keeps transactions dated in the given year and month.
func FilterByMonth(txns []Transaction, year, month int) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if t.Date.InMonth(year, month) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByDescription keeps transactions whose description contains the
// term, case-insensitively.
func FilterByDescription(txns []Transaction, term string) []Transaction {
	needle := strings.ToLower(term)
	var out []Transaction
	for _, t := range txns {
		if strings.Contains(strings.ToLower(t.Description), needle) {
			out = append(out, t)
		}
	}
	return out
}
