package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincontrol/internal/core"
	"fincontrol/internal/memory"
	"fincontrol/internal/ports"
)

type fakeMirror struct {
	mu      sync.Mutex
	rows    map[string]core.Transaction
	removed []string
	failN   int // fail the next n upserts
	err     error
	// runs after a successful upsert, before the worker records the outcome
	afterUpsert func()
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{rows: make(map[string]core.Transaction)}
}

func (f *fakeMirror) Upsert(_ context.Context, t core.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failN > 0 {
		f.failN--
		return "", f.err
	}
	f.rows[t.ID] = t
	if f.afterUpsert != nil {
		f.afterUpsert()
	}
	return "Transacoes!A2:G2", nil
}

func (f *fakeMirror) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeMirror) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok
}

func seed(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, store.CreateTransaction(context.Background(), core.Transaction{
			ID:          id,
			UserID:      "u1",
			Type:        core.Saida,
			Category:    "Lazer",
			Amount:      decimal.NewFromInt(20),
			Description: "Cinema",
			Date:        core.NewDate(2024, 3, 1),
			CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}))
	}
}

func status(t *testing.T, store *memory.Store, id string) string {
	t.Helper()
	s, ok := store.SyncStatus(id)
	require.True(t, ok)
	return s
}

func TestHandleChangeCreatedMirrorsAndMarksSynced(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "tx-1")
	mirror := newFakeMirror()
	w := NewSyncWorker(store, mirror, 10, time.Minute)

	err := w.HandleChange(ctx, ports.ChangeEvent{Entity: ports.EntityTransaction, Action: ports.ActionCreated, ID: "tx-1", UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, mirror.has("tx-1"))
	assert.Equal(t, ports.SyncDone, status(t, store, "tx-1"))
}

func TestHandleChangeDeletedRemovesRow(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	w := NewSyncWorker(memory.New(), mirror, 10, time.Minute)

	require.NoError(t, w.HandleChange(ctx, ports.ChangeEvent{Entity: ports.EntityTransaction, Action: ports.ActionDeleted, ID: "tx-9", UserID: "u1"}))
	assert.Equal(t, []string{"tx-9"}, mirror.removed)
}

func TestHandleChangeVanishedTransactionIsRemoved(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	w := NewSyncWorker(memory.New(), mirror, 10, time.Minute)

	require.NoError(t, w.HandleChange(ctx, ports.ChangeEvent{Entity: ports.EntityTransaction, Action: ports.ActionUpdated, ID: "gone", UserID: "u1"}))
	assert.Equal(t, []string{"gone"}, mirror.removed)
}

func TestHandleChangeIgnoresOtherEntities(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(memory.New(), mirror, 10, time.Minute)

	require.NoError(t, w.HandleChange(context.Background(), ports.ChangeEvent{Entity: ports.EntityBill, Action: ports.ActionPaid, ID: "b-1", UserID: "u1"}))
	assert.Empty(t, mirror.rows)
	assert.Empty(t, mirror.removed)
}

func TestTransientFailureStaysPendingForSweep(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "tx-1")
	mirror := newFakeMirror()
	mirror.failN, mirror.err = 1, errors.New("503 backend error")
	w := NewSyncWorker(store, mirror, 10, time.Minute)

	err := w.HandleChange(ctx, ports.ChangeEvent{Entity: ports.EntityTransaction, Action: ports.ActionCreated, ID: "tx-1", UserID: "u1"})
	require.Error(t, err, "transient errors are returned so the message is requeued")
	assert.Equal(t, ports.SyncPending, status(t, store, "tx-1"))

	synced, failed, err := w.ProcessPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Zero(t, failed)
	assert.Equal(t, ports.SyncDone, status(t, store, "tx-1"))
}

func TestEditDuringSyncStaysPending(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "tx-1")
	mirror := newFakeMirror()
	mirror.afterUpsert = func() {
		mirror.afterUpsert = nil
		cur, err := store.GetTransaction(ctx, "u1", "tx-1")
		require.NoError(t, err)
		cur.Amount = decimal.NewFromInt(999)
		require.NoError(t, store.UpdateTransaction(ctx, cur))
	}
	w := NewSyncWorker(store, mirror, 10, time.Minute)

	require.NoError(t, w.HandleChange(ctx, ports.ChangeEvent{Entity: ports.EntityTransaction, Action: ports.ActionCreated, ID: "tx-1", UserID: "u1"}))
	assert.Equal(t, ports.SyncPending, status(t, store, "tx-1"), "the sheet holds the old valor")

	_, _, err := w.ProcessPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, ports.SyncDone, status(t, store, "tx-1"))
	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	assert.True(t, mirror.rows["tx-1"].Amount.Equal(decimal.NewFromInt(999)))
}

func TestPermanentFailureMarksError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "tx-1")
	mirror := newFakeMirror()
	mirror.failN = 1
	mirror.err = &core.ValidationError{Record: "transaction tx-1", Field: "data", Err: core.ErrInvalidDate}
	w := NewSyncWorker(store, mirror, 10, time.Minute)

	err := w.HandleChange(ctx, ports.ChangeEvent{Entity: ports.EntityTransaction, Action: ports.ActionCreated, ID: "tx-1", UserID: "u1"})
	require.NoError(t, err, "permanent failures are not redelivered")
	assert.Equal(t, ports.SyncError, status(t, store, "tx-1"))
}

func TestStartupSyncCheckDrainsPending(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "tx-1", "tx-2", "tx-3")
	mirror := newFakeMirror()
	w := NewSyncWorker(store, mirror, 1, time.Minute)

	require.NoError(t, w.StartupSyncCheck(ctx))
	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		assert.True(t, mirror.has(id), id)
		assert.Equal(t, ports.SyncDone, status(t, store, id))
	}
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	store := memory.New()
	seed(t, store, "tx-1")
	mirror := newFakeMirror()
	w := NewSyncWorker(store, mirror, 10, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return mirror.has("tx-1") }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
