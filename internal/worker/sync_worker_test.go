package worker

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/store/jsonfile"
)

func newWorker(t *testing.T) (*SyncWorker, *jsonfile.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	target := jsonfile.New(filepath.Join(t.TempDir(), "mirror.json"), logger)
	return NewSyncWorker(target, logger), target
}

func txn(t *testing.T, cents int64, description string) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(core.NewDate(2024, 3, 15), core.Money{Cents: cents}, "Food", description, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestUpsertAddsNewTransaction(t *testing.T) {
	w, target := newWorker(t)
	ctx := context.Background()

	added := txn(t, -1250, "groceries")
	if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(nil, added)); err != nil {
		t.Fatal(err)
	}

	got, err := target.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].SameRecord(added) {
		t.Fatalf("mirror state = %+v", got)
	}
}

func TestUpsertUpdatesExistingTransaction(t *testing.T) {
	w, target := newWorker(t)
	ctx := context.Background()

	old := txn(t, -1250, "groceries")
	if err := target.AddTransaction(ctx, old); err != nil {
		t.Fatal(err)
	}

	updated := txn(t, -1300, "more groceries")
	if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(&old, updated)); err != nil {
		t.Fatal(err)
	}

	got, err := target.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].SameRecord(updated) {
		t.Fatalf("mirror state = %+v", got)
	}
}

func TestUpsertFallsBackToAddWhenOldMissing(t *testing.T) {
	w, target := newWorker(t)
	ctx := context.Background()

	old := txn(t, -1250, "groceries")
	updated := txn(t, -1300, "more groceries")
	if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(&old, updated)); err != nil {
		t.Fatal(err)
	}

	got, err := target.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].SameRecord(updated) {
		t.Fatalf("mirror state = %+v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	w, target := newWorker(t)
	ctx := context.Background()

	tx := txn(t, -1250, "groceries")
	if err := target.AddTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	msg := amqp.NewDeleteMessage(tx)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	// Replaying the same delete must not fail.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	got, err := target.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mirror, got %d", len(got))
	}
}
