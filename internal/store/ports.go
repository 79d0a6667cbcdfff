// Package store defines the contract every transaction backend implements.
package store

import (
	"context"
	"errors"

	"spendtrack/internal/core"
)

// ErrNotFound is returned by Update and Delete when no stored
// transaction matches the given one.
var ErrNotFound = errors.New("transaction not found")

// ExportFormat selects the serialization used by Export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

func (f ExportFormat) IsValid() bool {
	return f == ExportCSV || f == ExportJSON
}

// ConnectionStatus reports the outcome of a backend health probe.
type ConnectionStatus struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// TransactionStore persists transactions. Implementations identify a
// transaction primarily by its structural fields (date, amount,
// category, description) so that backends without stable row ids, such
// as spreadsheets, can participate. When several stored rows match,
// the first one found is affected.
type TransactionStore interface {
	// ListTransactions returns every stored transaction. Rows that
	// cannot be decoded are skipped.
	ListTransactions(ctx context.Context) ([]core.Transaction, error)

	// AddTransaction appends a transaction.
	AddTransaction(ctx context.Context, txn core.Transaction) error

	// UpdateTransaction replaces the first stored transaction matching
	// old with updated. Returns ErrNotFound when nothing matches.
	UpdateTransaction(ctx context.Context, old, updated core.Transaction) error

	// DeleteTransaction removes the first stored transaction matching
	// txn. Returns ErrNotFound when nothing matches.
	DeleteTransaction(ctx context.Context, txn core.Transaction) error

	// TestConnection probes the backend and never returns an error;
	// failures are reported in the status.
	TestConnection(ctx context.Context) ConnectionStatus

	// Export writes every stored transaction to path in the given
	// format and returns the path written.
	Export(ctx context.Context, format ExportFormat, path string) (string, error)

	// Close releases backend resources.
	Close() error
}
