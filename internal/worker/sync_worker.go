// Package worker mirrors transactions to the spreadsheet. Change messages
// drive it in near real time; a periodic sweep of rows still pending covers
// lost messages and worker downtime.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/log"
	"fincontrol/internal/ports"
)

// Store is what the worker needs from the shared database.
type Store interface {
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	ports.SyncTracker
}

type SyncWorker struct {
	store     Store
	mirror    ports.TransactionMirror
	batchSize int
	interval  time.Duration
}

func NewSyncWorker(store Store, mirror ports.TransactionMirror, batchSize int, interval time.Duration) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleChange applies one change event. A returned error asks the broker
// to redeliver; permanent failures are recorded on the row instead.
func (w *SyncWorker) HandleChange(ctx context.Context, ev ports.ChangeEvent) error {
	if ev.Entity != ports.EntityTransaction {
		slog.DebugContext(ctx, "Ignoring change for unmirrored entity",
			"entity", ev.Entity,
			"action", ev.Action,
			"id", ev.ID)
		return nil
	}

	switch ev.Action {
	case ports.ActionDeleted:
		return w.remove(ctx, ev.ID)
	case ports.ActionCreated, ports.ActionUpdated:
		t, err := w.store.GetTransaction(ctx, ev.UserID, ev.ID)
		if errors.Is(err, ports.ErrNotFound) {
			// deleted before we got here
			return w.remove(ctx, ev.ID)
		}
		if err != nil {
			return fmt.Errorf("get transaction from storage: %w", err)
		}
		return w.sync(ctx, t)
	default:
		slog.WarnContext(ctx, "Unknown change action", "action", ev.Action, "id", ev.ID)
		return nil
	}
}

func (w *SyncWorker) remove(ctx context.Context, id string) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove transaction %s from sheet: %w", id, err)
	}
	slog.InfoContext(ctx, "Removed transaction from sheet", log.FieldEntityID, id, log.FieldOperation, log.OpDelete)
	return nil
}

// sync upserts t and records the outcome. Transient failures leave the row
// pending so the sweep retries it.
func (w *SyncWorker) sync(ctx context.Context, t core.Transaction) error {
	ref, err := w.mirror.Upsert(ctx, t)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			slog.ErrorContext(ctx, "Transaction cannot be mirrored", "id", t.ID, "error", err)
			if markErr := w.store.MarkSyncError(ctx, t.ID, t.Version); markErr != nil && !errors.Is(markErr, ports.ErrConflict) {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
			}
			return nil
		}
		return fmt.Errorf("upsert transaction %s: %w", t.ID, err)
	}

	switch err := w.store.MarkSynced(ctx, t.ID, t.Version); {
	case err == nil, errors.Is(err, ports.ErrNotFound):
	case errors.Is(err, ports.ErrConflict):
		// edited while we were writing; stays pending for the next pass
		slog.InfoContext(ctx, "Transaction changed during sync", "id", t.ID, "version", t.Version)
		return nil
	default:
		// the row is in the sheet; a later sweep re-upserts harmlessly
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}
	slog.InfoContext(ctx, "Synced transaction",
		log.FieldEntityID, t.ID,
		log.FieldOperation, log.OpSync,
		log.FieldSheetRow, ref,
		log.FieldValor, t.Amount.String())
	return nil
}

// ProcessPending syncs up to limit pending transactions, oldest first.
func (w *SyncWorker) ProcessPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.store.PendingSync(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending transactions: %w", err)
	}
	for _, t := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.sync(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction", "id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// StartupSyncCheck drains a larger batch once when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.ProcessPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

// Run sweeps pending transactions every interval until ctx is done.
func (w *SyncWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Pending sync sweep started",
		"interval", w.interval,
		"batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Pending sync sweep stopped")
			return nil
		case <-ticker.C:
			synced, failed, err := w.ProcessPending(ctx, w.batchSize)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.ErrorContext(ctx, "Pending sync sweep failed", "error", err)
				continue
			}
			if synced+failed > 0 {
				slog.InfoContext(ctx, "Pending sync sweep", "synced", synced, "errors", failed)
			}
		}
	}
}
