package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Budget is a monthly spending ceiling scoped to a category and an
// activation date window. EndDate is optional; a zero Date means the
// budget stays active indefinitely.
type Budget struct {
	ID           string
	Category     string
	MonthlyLimit Money
	StartDate    Date
	EndDate      Date
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewBudget constructs and validates a budget.
func NewBudget(category string, limit Money, start, end Date, now time.Time) (Budget, error) {
	b := Budget{
		ID:           uuid.NewString(),
		Category:     strings.TrimSpace(category),
		MonthlyLimit: limit,
		StartDate:    start,
		EndDate:      end,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := b.Validate(); err != nil {
		return Budget{}, err
	}
	return b, nil
}

func (b Budget) Validate() error {
	if b.MonthlyLimit.Cents <= 0 {
		return validationError(ErrInvalidLimit)
	}
	if strings.TrimSpace(b.Category) == "" {
		return validationError(ErrEmptyCategory)
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if !b.EndDate.IsZero() && !b.EndDate.After(b.StartDate.Time) {
		return validationError(ErrEndBeforeStart)
	}
	return nil
}

// ActiveOn reports whether the budget applies to the given date:
// the active flag is set, the date is not before StartDate, and not
// after EndDate when one is set.
func (b Budget) ActiveOn(d Date) bool {
	if !b.Active {
		return false
	}
	if d.Before(b.StartDate.Time) {
		return false
	}
	if !b.EndDate.IsZero() && d.After(b.EndDate.Time) {
		return false
	}
	return true
}

// SpendingForMonth sums the absolute value of this category's expenses
// in the target month. Category matching is case-insensitive and
// credits never offset budget consumption.
func (b Budget) SpendingForMonth(year, month int, txns []Transaction) Money {
	var cents int64
	for _, t := range txns {
		if !strings.EqualFold(t.Category, b.Category) {
			continue
		}
		if !t.Date.InMonth(year, month) {
			continue
		}
		if t.Amount.IsExpense() {
			cents += -t.Amount.Cents
		}
	}
	return Money{Cents: cents}
}

// Remaining returns MonthlyLimit minus spending; negative when over.
func (b Budget) Remaining(year, month int, txns []Transaction) Money {
	spent := b.SpendingForMonth(year, month, txns)
	return Money{Cents: b.MonthlyLimit.Cents - spent.Cents}
}

// OverBudget reports whether spending exceeds the limit for the month.
func (b Budget) OverBudget(year, month int, txns []Transaction) bool {
	return b.Remaining(year, month, txns).Cents < 0
}

// PercentUsed returns spending as a percentage of the limit. It can
// exceed 100. The limit is invariant-positive at construction but may
// be mutated externally, so a non-positive limit yields 0.
func (b Budget) PercentUsed(year, month int, txns []Transaction) float64 {
	if b.MonthlyLimit.Cents <= 0 {
		return 0
	}
	spent := b.SpendingForMonth(year, month, txns)
	return float64(spent.Cents) / float64(b.MonthlyLimit.Cents) * 100
}

// FormatLimit renders the monthly limit with a currency symbol.
func (b Budget) FormatLimit(symbol string) string {
	return b.MonthlyLimit.Format(symbol)
}
