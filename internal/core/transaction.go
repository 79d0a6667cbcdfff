package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transaction is a single dated, signed monetary record. Negative
// amounts are expenses, positive amounts are credits/income.
type Transaction struct {
	ID          string
	Date        Date
	Amount      Money
	Category    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTransaction constructs and validates a transaction, assigning a
// fresh id and timestamps. It fails with a ValidationError when the
// amount is zero, the date is invalid, or the category is empty after
// trimming.
func NewTransaction(date Date, amount Money, category, description string, now time.Time) (Transaction, error) {
	t := Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if t.Amount.IsZero() {
		return validationError(ErrZeroAmount)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return validationError(ErrEmptyCategory)
	}
	return nil
}

// Update replaces all user-editable fields, re-runs full validation and
// bumps UpdatedAt. The receiver is left untouched when validation fails.
func (t *Transaction) Update(date Date, amount Money, category, description string, now time.Time) error {
	candidate := *t
	candidate.Date = date
	candidate.Amount = amount
	candidate.Category = strings.TrimSpace(category)
	candidate.Description = strings.TrimSpace(description)
	candidate.UpdatedAt = now
	if err := candidate.Validate(); err != nil {
		return err
	}
	*t = candidate
	return nil
}

// SameRecord reports structural equality on (date, amount, category,
// description). Storage-layer matching for update and delete uses this
// rather than the id, because spreadsheet backends do not preserve ids
// across reads. Two structurally identical transactions are
// indistinguishable under this contract.
func (t Transaction) SameRecord(o Transaction) bool {
	return t.Date.String() == o.Date.String() &&
		t.Amount.Cents == o.Amount.Cents &&
		t.Category == o.Category &&
		t.Description == o.Description
}

// FormatAmount renders the signed amount with a currency symbol.
func (t Transaction) FormatAmount(symbol string) string {
	return t.Amount.Format(symbol)
}

// FormatDate renders the date for display, e.g. "January 02, 2006".
func (t Transaction) FormatDate() string {
	return t.Date.FormatLong()
}
