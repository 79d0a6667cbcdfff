package core

import (
	"time"
)

// DateLayout is the wire format for calendar dates across all backends.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM year-month token for this date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// MonthKeyOf returns the YYYY-MM year-month token for t. It is the
// idempotency key for all once-per-month processing.
func MonthKeyOf(t time.Time) string {
	return t.Format("2006-01")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return validationError(ErrInvalidDate)
	}
	return nil
}

// InMonth reports whether the date falls in the given year and month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

// Between reports whether the date falls within [start, end] inclusive.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a target day of month to the actual length of the
// given month, so day 31 resolves to Feb 28/29, Apr 30, and so on.
func ClampDay(day, year, month int) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// PreviousMonth returns the year and month preceding the given one,
// rolling over the January to December year boundary.
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthRange returns the first and last calendar dates of a month.
func MonthRange(year, month int) (Date, Date) {
	return NewDate(year, month, 1), NewDate(year, month, LastDayOfMonth(year, month))
}

// FormatLong renders the date for display, e.g. "January 02, 2006".
func (d Date) FormatLong() string {
	return d.Format("January 02, 2006")
}
