// Package worker applies transaction sync messages to a secondary
// backend, keeping it mirrored with the primary store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

type SyncWorker struct {
	target store.TransactionStore
	logger *slog.Logger
	now    func() time.Time
}

func NewSyncWorker(target store.TransactionStore, logger *slog.Logger) *SyncWorker {
	return &SyncWorker{
		target: target,
		logger: logger,
		now:    time.Now,
	}
}

// HandleSyncMessage replays one write on the target backend. Upserts
// fall back to an add when the pre-update row is not found, so a
// mirror that missed earlier messages converges instead of stalling.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Op {
	case amqp.OpUpsert:
		return w.applyUpsert(ctx, msg)
	case amqp.OpDelete:
		return w.applyDelete(ctx, msg)
	default:
		return fmt.Errorf("unknown sync op %q", msg.Op)
	}
}

func (w *SyncWorker) applyUpsert(ctx context.Context, msg *amqp.SyncMessage) error {
	updated, err := core.TransactionFromRecord(msg.New, w.now())
	if err != nil {
		return fmt.Errorf("decode new record: %w", err)
	}

	if msg.Old != nil {
		old, err := core.TransactionFromRecord(msg.Old, w.now())
		if err != nil {
			return fmt.Errorf("decode old record: %w", err)
		}
		err = w.target.UpdateTransaction(ctx, old, updated)
		if err == nil {
			w.logger.Info("mirrored transaction update",
				slog.String("date", updated.Date.String()),
				slog.String("category", updated.Category))
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("mirror update: %w", err)
		}
		w.logger.Warn("update target not found on mirror, adding instead",
			slog.String("date", old.Date.String()),
			slog.String("category", old.Category))
	}

	if err := w.target.AddTransaction(ctx, updated); err != nil {
		return fmt.Errorf("mirror add: %w", err)
	}
	w.logger.Info("mirrored transaction add",
		slog.String("date", updated.Date.String()),
		slog.String("category", updated.Category))
	return nil
}

func (w *SyncWorker) applyDelete(ctx context.Context, msg *amqp.SyncMessage) error {
	txn, err := core.TransactionFromRecord(msg.Old, w.now())
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	err = w.target.DeleteTransaction(ctx, txn)
	if errors.Is(err, store.ErrNotFound) {
		// Already gone on the mirror, nothing to do.
		w.logger.Warn("delete target not found on mirror",
			slog.String("date", txn.Date.String()),
			slog.String("category", txn.Category))
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror delete: %w", err)
	}
	w.logger.Info("mirrored transaction delete",
		slog.String("date", txn.Date.String()),
		slog.String("category", txn.Category))
	return nil
}
