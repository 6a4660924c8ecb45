package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"

	_ "modernc.org/sqlite"
)

// timestampLayout is fixed width so that TEXT ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Migrations first, on their own connection.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	err := r.queries.CreateUser(ctx, User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    formatTimestamp(u.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", mapErr(err))
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", mapErr(err))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapErr(err))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	n, err := r.queries.UpdateUser(ctx, User{ID: u.ID, Name: u.Name, Email: u.Email})
	return affected("update user", n, err)
}

// Transactions

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.queries.CreateTransaction(ctx, fromCoreTransaction(t)); err != nil {
		return fmt.Errorf("create transaction: %w", mapErr(err))
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", t.ID, "user_id", t.UserID)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", mapErr(err))
	}
	return toCoreTransaction(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateTransaction(ctx, fromCoreTransaction(t))
	return affected("update transaction", n, err)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	return affected("delete transaction", n, err)
}

// Sync tracking

// PendingSync returns transactions that still need to reach the spreadsheet, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.GetPendingSyncTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64) error {
	if err := r.setSyncStatus(ctx, "mark transaction synced", id, version, ports.SyncDone); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transaction marked as synced", "id", id, "version", version)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string, version int64) error {
	if err := r.setSyncStatus(ctx, "mark transaction sync error", id, version, ports.SyncError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id, "version", version)
	return nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, op, id string, version int64, status string) error {
	n, err := r.queries.SetTransactionSyncStatus(ctx, id, version, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	if n > 0 {
		return nil
	}
	// nothing matched: the row is gone or was edited after the snapshot
	if _, err := r.queries.GetTransactionVersion(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return fmt.Errorf("%s: version %d is stale: %w", op, version, ports.ErrConflict)
}

// Bills

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := r.queries.CreateBill(ctx, fromCoreBill(b)); err != nil {
		return fmt.Errorf("create bill: %w", mapErr(err))
	}
	return nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, userID, id string) (core.Bill, error) {
	row, err := r.queries.GetBill(ctx, id, userID)
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill: %w", mapErr(err))
	}
	return toCoreBill(row)
}

func (r *SQLiteRepository) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	rows, err := r.queries.ListBills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	out := make([]core.Bill, 0, len(rows))
	for _, row := range rows {
		b, err := toCoreBill(row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateBill(ctx context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateBill(ctx, fromCoreBill(b))
	return affected("update bill", n, err)
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteBill(ctx, id, userID)
	return affected("delete bill", n, err)
}

// Goals

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := r.queries.CreateGoal(ctx, fromCoreGoal(g)); err != nil {
		return fmt.Errorf("create goal: %w", mapErr(err))
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, id, userID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", mapErr(err))
	}
	return toCoreGoal(row)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := toCoreGoal(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateGoal(ctx, fromCoreGoal(g))
	return affected("update goal", n, err)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteGoal(ctx, id, userID)
	return affected("delete goal", n, err)
}

// mapErr translates driver errors into port errors.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ports.ErrConflict, err)
	}
	return err
}

func affected(op string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ports.ErrNotFound)
	}
	return nil
}

// Row conversion

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func parseDecimal(record, field, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &core.ValidationError{Record: record, Field: field, Err: core.ErrInvalidAmount}
	}
	return v, nil
}

func parseDate(record, field, s string) (core.Date, error) {
	v, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, &core.ValidationError{Record: record, Field: field, Err: err}
	}
	return v, nil
}

func toCoreUser(row User) core.User {
	return core.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    parseTimestamp(row.CreatedAt),
	}
}

func fromCoreTransaction(t core.Transaction) Transaction {
	return Transaction{
		ID:            t.ID,
		UserID:        t.UserID,
		Tipo:          string(t.Type),
		Categoria:     t.Category,
		Subcategoria:  t.Subcategory,
		Valor:         t.Amount.String(),
		Descricao:     t.Description,
		Data:          t.Date.String(),
		PaymentMethod: string(t.PaymentMethod),
		IsPaid:        t.IsPaid,
		CreatedAt:     formatTimestamp(t.CreatedAt),
	}
}

func toCoreTransaction(row Transaction) (core.Transaction, error) {
	rec := "transaction " + row.ID
	amount, err := parseDecimal(rec, "valor", row.Valor)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(rec, "data", row.Data)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:            row.ID,
		UserID:        row.UserID,
		Type:          core.TransactionType(row.Tipo),
		Category:      row.Categoria,
		Subcategory:   row.Subcategoria,
		Amount:        amount,
		Description:   row.Descricao,
		Date:          date,
		PaymentMethod: core.PaymentMethod(row.PaymentMethod),
		IsPaid:        row.IsPaid,
		CreatedAt:     parseTimestamp(row.CreatedAt),
		Version:       row.Version,
	}, nil
}

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func fromCoreBill(b core.Bill) Bill {
	var paid sql.NullString
	if !b.PaidAt.IsZero() {
		paid = sql.NullString{String: b.PaidAt.String(), Valid: true}
	}
	return Bill{
		ID:            b.ID,
		UserID:        b.UserID,
		Tipo:          string(b.Type),
		Titulo:        b.Title,
		Valor:         b.Amount.String(),
		Vencimento:    b.DueDate.String(),
		Categoria:     b.Category,
		Subcategoria:  b.Subcategory,
		Recorrencia:   string(b.Recurrence),
		Status:        string(b.Status),
		DataPagamento: paid,
		Observacoes:   b.Notes,
		CreatedAt:     formatTimestamp(b.CreatedAt),
	}
}

func toCoreBill(row Bill) (core.Bill, error) {
	rec := "bill " + row.ID
	amount, err := parseDecimal(rec, "valor", row.Valor)
	if err != nil {
		return core.Bill{}, err
	}
	due, err := parseDate(rec, "vencimento", row.Vencimento)
	if err != nil {
		return core.Bill{}, err
	}
	var paidAt core.Date
	if row.DataPagamento.Valid && row.DataPagamento.String != "" {
		if paidAt, err = parseDate(rec, "data_pagamento", row.DataPagamento.String); err != nil {
			return core.Bill{}, err
		}
	}
	return core.Bill{
		ID:          row.ID,
		UserID:      row.UserID,
		Type:        core.BillType(row.Tipo),
		Title:       row.Titulo,
		Amount:      amount,
		DueDate:     due,
		Category:    row.Categoria,
		Subcategory: row.Subcategoria,
		Recurrence:  core.Recurrence(row.Recorrencia),
		Status:      core.BillStatus(row.Status),
		PaidAt:      paidAt,
		Notes:       row.Observacoes,
		CreatedAt:   parseTimestamp(row.CreatedAt),
	}, nil
}

func fromCoreGoal(g core.Goal) Goal {
	return Goal{
		ID:         g.ID,
		UserID:     g.UserID,
		Titulo:     g.Title,
		ValorAlvo:  g.Target.String(),
		ValorAtual: g.Current.String(),
		Prazo:      g.Deadline.String(),
		CreatedAt:  formatTimestamp(g.CreatedAt),
	}
}

func toCoreGoal(row Goal) (core.Goal, error) {
	rec := "goal " + row.ID
	target, err := parseDecimal(rec, "valor_alvo", row.ValorAlvo)
	if err != nil {
		return core.Goal{}, err
	}
	current, err := parseDecimal(rec, "valor_atual", row.ValorAtual)
	if err != nil {
		return core.Goal{}, err
	}
	deadline, err := parseDate(rec, "prazo", row.Prazo)
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Titulo,
		Target:    target,
		Current:   current,
		Deadline:  deadline,
		CreatedAt: parseTimestamp(row.CreatedAt),
	}, nil
}
