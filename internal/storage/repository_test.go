package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, id, email string) {
	t.Helper()
	require.NoError(t, repo.CreateUser(context.Background(), core.User{
		ID: id, Name: "Ana", Email: email, PasswordHash: "hash", CreatedAt: time.Now(),
	}))
}

func sampleTx(id, user string, created time.Time) core.Transaction {
	return core.Transaction{
		ID:            id,
		UserID:        user,
		Type:          core.Saida,
		Category:      "Alimentação",
		Amount:        decimal.RequireFromString("12.345"),
		Description:   "padaria",
		Date:          core.NewDate(2024, 2, 29),
		PaymentMethod: core.Pix,
		IsPaid:        true,
		CreatedAt:     created,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "ana@example.com")

	err := repo.CreateUser(ctx, core.User{ID: "u2", Name: "B", Email: "ana@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ports.ErrConflict)

	u, err := repo.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u.Name = "Ana Maria"
	require.NoError(t, repo.UpdateUser(ctx, u))
	got, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)

	_, err = repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestTransactionRoundTripKeepsDecimalAndDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")

	in := sampleTx("t1", "u1", time.Now())
	require.NoError(t, repo.CreateTransaction(ctx, in))

	got, err := repo.GetTransaction(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(in.Amount))
	assert.Equal(t, "2024-02-29", got.Date.String())
	assert.Equal(t, core.Pix, got.PaymentMethod)
	assert.True(t, got.IsPaid)

	_, err = repo.GetTransaction(ctx, "someone-else", "t1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateTransaction(ctx, sampleTx(id, "u1", base.Add(time.Duration(i)*time.Second))))
	}

	got, err := repo.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})

	empty, err := repo.ListTransactions(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")
	require.NoError(t, repo.CreateTransaction(ctx, sampleTx("t1", "u1", time.Now())))

	upd := sampleTx("t1", "u1", time.Now())
	upd.Description = "mercado"
	require.NoError(t, repo.UpdateTransaction(ctx, upd))

	missing := sampleTx("nope", "u1", time.Now())
	assert.ErrorIs(t, repo.UpdateTransaction(ctx, missing), ports.ErrNotFound)

	require.NoError(t, repo.DeleteTransaction(ctx, "u1", "t1"))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "u1", "t1"), ports.ErrNotFound)
}

func TestSyncStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")
	base := time.Now()
	require.NoError(t, repo.CreateTransaction(ctx, sampleTx("t1", "u1", base)))
	require.NoError(t, repo.CreateTransaction(ctx, sampleTx("t2", "u1", base.Add(time.Second))))

	pending, err := repo.PendingSync(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "t1", pending[0].ID)

	require.NoError(t, repo.MarkSynced(ctx, "t1", 1))
	require.NoError(t, repo.MarkSyncError(ctx, "t2", 1))
	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// editing puts the row back in the queue
	require.NoError(t, repo.UpdateTransaction(ctx, sampleTx("t1", "u1", base)))
	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "t1", pending[0].ID)

	assert.ErrorIs(t, repo.MarkSynced(ctx, "ghost", 1), ports.ErrNotFound)
}

func TestMarkSyncedRejectsEditedRow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")
	require.NoError(t, repo.CreateTransaction(ctx, sampleTx("t1", "u1", time.Now())))

	// the worker reads its copy, then the user edits before the mark lands
	snapshot, err := repo.GetTransaction(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.Version)

	edited := snapshot
	edited.Amount = decimal.NewFromInt(999)
	require.NoError(t, repo.UpdateTransaction(ctx, edited))

	assert.ErrorIs(t, repo.MarkSynced(ctx, "t1", snapshot.Version), ports.ErrConflict)
	assert.ErrorIs(t, repo.MarkSyncError(ctx, "t1", snapshot.Version), ports.ErrConflict)

	pending, err := repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Amount.Equal(decimal.NewFromInt(999)))
	assert.Equal(t, int64(2), pending[0].Version)

	require.NoError(t, repo.MarkSynced(ctx, "t1", pending[0].Version))
	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCorruptStoredDateSurfacesValidationError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")
	require.NoError(t, repo.CreateTransaction(ctx, sampleTx("t1", "u1", time.Now())))

	_, err := repo.db.ExecContext(ctx, `UPDATE transactions SET data = '31/12/2024' WHERE id = 't1'`)
	require.NoError(t, err)

	_, err = repo.ListTransactions(ctx, "u1")
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "got %v", err)
	assert.Equal(t, "transaction t1", vErr.Record)
	assert.Equal(t, "data", vErr.Field)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestBillsAndGoals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", "a@example.com")

	bill := core.Bill{
		ID: "b1", UserID: "u1", Type: core.APagar, Title: "Aluguel",
		Amount: decimal.NewFromInt(1500), DueDate: core.NewDate(2024, 3, 10),
		Category: "Moradia", Recurrence: core.Mensal, Status: core.Pendente, CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateBill(ctx, bill))
	early := bill
	early.ID, early.DueDate = "b0", core.NewDate(2024, 3, 1)
	require.NoError(t, repo.CreateBill(ctx, early))

	bills, err := repo.ListBills(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "b0", bills[0].ID)
	assert.True(t, bills[1].PaidAt.IsZero())

	bill.Status = core.Pago
	bill.PaidAt = core.NewDate(2024, 3, 9)
	require.NoError(t, repo.UpdateBill(ctx, bill))
	got, err := repo.GetBill(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, core.Pago, got.Status)
	assert.Equal(t, "2024-03-09", got.PaidAt.String())
	assert.Equal(t, core.Mensal, got.Recurrence)

	goal := core.Goal{
		ID: "g1", UserID: "u1", Title: "Reserva", Target: decimal.NewFromInt(200),
		Current: decimal.Zero, Deadline: core.NewDate(2024, 12, 31), CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateGoal(ctx, goal))
	goal.Current = decimal.RequireFromString("50.5")
	require.NoError(t, repo.UpdateGoal(ctx, goal))
	goals, err := repo.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Current.Equal(decimal.RequireFromString("50.5")))

	require.NoError(t, repo.DeleteGoal(ctx, "u1", "g1"))
	_, err = repo.GetGoal(ctx, "u1", "g1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
