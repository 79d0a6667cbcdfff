// Package mail renders and delivers spending summary emails through a
// transactional email HTTP API.
package mail

import (
	"context"

	"spendtrack/internal/core"
)

// SummaryRequest describes one report email covering the transactions
// between Start and End inclusive.
type SummaryRequest struct {
	Recipients        []string
	Transactions      []core.Transaction
	Start             core.Date
	End               core.Date
	Subject           string
	CurrencySymbol    string
	IncludeAttachment bool
}

// Mailer delivers summary emails. Delivery never surfaces as an error
// value; the boolean and message report the outcome so callers can
// pass it straight through to their own result.
type Mailer interface {
	SendSummary(ctx context.Context, req SummaryRequest) (bool, string)
}
