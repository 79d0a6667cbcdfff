// Package jsonfile stores transactions in a single local JSON
// document. It is the zero-dependency default backend.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

type document struct {
	Transactions []core.Record `json:"transactions"`
}

// Store keeps all transactions in one JSON file. Every write rewrites
// the whole document through a temp file plus rename, so a crash never
// leaves a half-written file behind.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	now    func() time.Time
}

func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return s.decode(doc), nil
}

func (s *Store) AddTransaction(ctx context.Context, txn core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Transactions = append(doc.Transactions, txn.ToRecord())
	return s.save(doc)
}

func (s *Store) UpdateTransaction(ctx context.Context, old, updated core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	idx := s.indexOf(doc, old)
	if idx < 0 {
		return store.ErrNotFound
	}
	doc.Transactions[idx] = updated.ToRecord()
	return s.save(doc)
}

func (s *Store) DeleteTransaction(ctx context.Context, txn core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	idx := s.indexOf(doc, txn)
	if idx < 0 {
		return store.ErrNotFound
	}
	doc.Transactions = append(doc.Transactions[:idx], doc.Transactions[idx+1:]...)
	return s.save(doc)
}

func (s *Store) TestConnection(ctx context.Context) store.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return store.ConnectionStatus{
			Success: false,
			Message: fmt.Sprintf("cannot read %s: %v", s.path, err),
		}
	}
	return store.ConnectionStatus{
		Success: true,
		Message: "local file backend reachable",
		Details: map[string]string{
			"path":         s.path,
			"transactions": fmt.Sprintf("%d", len(doc.Transactions)),
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

func (s *Store) Close() error { return nil }

// indexOf finds the first stored record structurally matching want.
// Records that fail to decode are skipped, same as in ListTransactions.
func (s *Store) indexOf(doc *document, want core.Transaction) int {
	for i, rec := range doc.Transactions {
		t, err := core.TransactionFromRecord(rec, s.now())
		if err != nil {
			continue
		}
		if t.SameRecord(want) {
			return i
		}
	}
	return -1
}

func (s *Store) decode(doc *document) []core.Transaction {
	txns := make([]core.Transaction, 0, len(doc.Transactions))
	for i, rec := range doc.Transactions {
		t, err := core.TransactionFromRecord(rec, s.now())
		if err != nil {
			s.logger.Warn("skipping malformed transaction record",
				slog.String("path", s.path),
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		txns = append(txns, t)
	}
	return txns
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{Transactions: []core.Record{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", s.path, err)
	}
	if doc.Transactions == nil {
		doc.Transactions = []core.Record{}
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
