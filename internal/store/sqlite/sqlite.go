// Package sqlite stores transactions in an embedded SQLite database.
// When a relay is attached, every successful write is mirrored out so
// a worker can keep a secondary backend in sync.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

// Relay receives change notifications after a write commits. Publish
// failures never fail the write; the store logs and moves on.
type Relay interface {
	PublishUpsert(ctx context.Context, old *core.Transaction, updated core.Transaction) error
	PublishDelete(ctx context.Context, txn core.Transaction) error
}

type Store struct {
	db     *sql.DB
	path   string
	relay  Relay
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies
// pending migrations. relay may be nil.
func Open(path string, relay Relay, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, relay: relay, logger: logger}, nil
}

const selectColumns = "id, date, amount_cents, category, description, created_at, updated_at"

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM transactions ORDER BY date, created_at")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			s.logger.Warn("skipping malformed transaction row", slog.String("error", err.Error()))
			continue
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *Store) AddTransaction(ctx context.Context, txn core.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		txn.ID, txn.Date.String(), txn.Amount.Cents, txn.Category, txn.Description,
		txn.CreatedAt.Format(time.RFC3339), txn.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	s.notifyUpsert(ctx, nil, txn)
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, old, updated core.Transaction) error {
	id, err := s.findID(ctx, old)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE transactions SET date = ?, amount_cents = ?, category = ?, description = ?, updated_at = ? WHERE id = ?",
		updated.Date.String(), updated.Amount.Cents, updated.Category, updated.Description,
		updated.UpdatedAt.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.notifyUpsert(ctx, &old, updated)
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, txn core.Transaction) error {
	id, err := s.findID(ctx, txn)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if s.relay != nil {
		if err := s.relay.PublishDelete(ctx, txn); err != nil {
			s.logger.Error("relay publish failed", slog.String("op", "delete"), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Store) TestConnection(ctx context.Context) store.ConnectionStatus {
	if err := s.db.PingContext(ctx); err != nil {
		return store.ConnectionStatus{Success: false, Message: fmt.Sprintf("database unreachable: %v", err)}
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return store.ConnectionStatus{Success: false, Message: fmt.Sprintf("count query failed: %v", err)}
	}
	return store.ConnectionStatus{
		Success: true,
		Message: "sqlite backend reachable",
		Details: map[string]string{
			"path":         s.path,
			"transactions": fmt.Sprintf("%d", count),
		},
	}
}

func (s *Store) Export(ctx context.Context, format store.ExportFormat, path string) (string, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return "", err
	}
	return store.WriteExport(txns, format, path)
}

func (s *Store) Close() error { return s.db.Close() }

// findID resolves a transaction to its row id, trying the id column
// first and falling back to the structural fields. Spreadsheet-shaped
// callers may hand in transactions whose ids were regenerated on read.
func (s *Store) findID(ctx context.Context, txn core.Transaction) (string, error) {
	var id string
	if txn.ID != "" {
		err := s.db.QueryRowContext(ctx, "SELECT id FROM transactions WHERE id = ?", txn.ID).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("find transaction: %w", err)
		}
	}
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM transactions WHERE date = ? AND amount_cents = ? AND category = ? AND description = ? ORDER BY created_at LIMIT 1",
		txn.Date.String(), txn.Amount.Cents, txn.Category, txn.Description).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find transaction: %w", err)
	}
	return id, nil
}

func (s *Store) notifyUpsert(ctx context.Context, old *core.Transaction, updated core.Transaction) {
	if s.relay == nil {
		return
	}
	if err := s.relay.PublishUpsert(ctx, old, updated); err != nil {
		s.logger.Error("relay publish failed", slog.String("op", "upsert"), slog.String("error", err.Error()))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		dateStr              string
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &dateStr, &t.Amount.Cents, &t.Category, &t.Description, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row date %q: %w", dateStr, err)
	}
	t.Date = date
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		t.UpdatedAt = ts
	}
	return t, nil
}
