package core

import (
	"strings"
	"time"
)

// RecurringRule is a template that materializes one transaction per
// calendar month once its target day has passed. The amount keeps the
// sign it was created with, so both recurring expenses and recurring
// credits are expressed by the same type.
//
// LastProcessed holds the YYYY-MM token of the last month the rule was
// applied in, or the empty string when it never ran. Comparing it to
// the current month token is what makes processing idempotent.
type RecurringRule struct {
	Amount        Money
	Category      string
	Description   string
	DayOfMonth    int
	LastProcessed string
	Enabled       bool
}

func (r RecurringRule) Validate() error {
	if r.Amount.IsZero() {
		return validationError(ErrZeroAmount)
	}
	if strings.TrimSpace(r.Category) == "" {
		return validationError(ErrEmptyCategory)
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return validationError(ErrInvalidDayOfMonth)
	}
	return nil
}

// DueOn reports whether the rule should be applied now: it is enabled,
// it has not yet run in the current month, and today has reached the
// target day. The target day is clamped to the month's actual length,
// so a day-31 rule still fires in a 30-day month.
func (r RecurringRule) DueOn(now time.Time) bool {
	if !r.Enabled {
		return false
	}
	if r.LastProcessed == MonthKeyOf(now) {
		return false
	}
	target := ClampDay(r.DayOfMonth, now.Year(), int(now.Month()))
	return now.Day() >= target
}

// TargetDate is the date the materialized transaction carries: the
// rule's day within the current month, clamped to the month's length.
func (r RecurringRule) TargetDate(now time.Time) Date {
	day := ClampDay(r.DayOfMonth, now.Year(), int(now.Month()))
	return NewDate(now.Year(), int(now.Month()), day)
}

// MaterializedDescription tags generated transactions so they stay
// distinguishable from manual entries.
func (r RecurringRule) MaterializedDescription() string {
	if strings.TrimSpace(r.Description) == "" {
		return "[auto]"
	}
	return "[auto] " + r.Description
}
