// Package backend selects and wires a transaction store from
// configuration.
package backend

import (
	"fmt"

	"spendtrack/internal/store"
)

type Type string

const (
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
	SheetsBackend   Type = "sheets"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case JSONFileBackend, SQLiteBackend, SheetsBackend:
		return true
	}
	return false
}

func Types() []Type {
	return []Type{JSONFileBackend, SQLiteBackend, SheetsBackend}
}

type Config struct {
	Type Type

	// jsonfile backend
	JSONPath string

	// sqlite backend; AMQP settings are optional and enable write
	// mirroring to the sync queue
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// sheets backend
	SpreadsheetID string
	SheetName     string
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q", c.Type)
	}
	switch c.Type {
	case JSONFileBackend:
		if c.JSONPath == "" {
			return fmt.Errorf("json file path is required for the jsonfile backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	case SheetsBackend:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet id is required for the sheets backend")
		}
	}
	return nil
}

// Result bundles the opened store with its cleanup chain.
type Result struct {
	Store   store.TransactionStore
	Cleanup func() error
}
