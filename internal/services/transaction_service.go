package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/log"
	"fincontrol/internal/ports"
)

// TransactionInput is a new transaction as submitted. IsPaid defaults to true.
type TransactionInput struct {
	Type          core.TransactionType
	Category      string
	Subcategory   string
	Amount        decimal.Decimal
	Description   string
	Date          core.Date
	PaymentMethod core.PaymentMethod
	IsPaid        *bool
}

// TransactionPatch carries a partial update; nil fields are left as stored.
type TransactionPatch struct {
	Type          *core.TransactionType
	Category      *string
	Subcategory   *string
	Amount        *decimal.Decimal
	Description   *string
	Date          *core.Date
	PaymentMethod *core.PaymentMethod
	IsPaid        *bool
}

func (p TransactionPatch) apply(t *core.Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Subcategory != nil {
		t.Subcategory = *p.Subcategory
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.IsPaid != nil {
		t.IsPaid = *p.IsPaid
	}
}

// TransactionService saves transactions locally first, then announces the
// change so the worker can mirror it.
type TransactionService struct {
	store     ports.TransactionStore
	publisher ports.EventPublisher
	cache     Invalidator
	now       func() time.Time
	newID     func() string
}

func NewTransactionService(store ports.TransactionStore, publisher ports.EventPublisher, cache Invalidator) *TransactionService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error) {
	isPaid := true
	if in.IsPaid != nil {
		isPaid = *in.IsPaid
	}
	t := core.Transaction{
		ID:            s.newID(),
		UserID:        userID,
		Type:          in.Type,
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		Amount:        in.Amount,
		Description:   in.Description,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		IsPaid:        isPaid,
		CreatedAt:     s.now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	fields := log.NewFields().
		WithUser(userID).
		WithEntity(ports.EntityTransaction, t.ID).
		WithOperation(log.OpCreate).
		WithTransaction(string(t.Type), t.Category, t.Amount)
	slog.InfoContext(ctx, "Transaction created", fields.ToSlice()...)

	s.changed(ctx, ports.ActionCreated, t)
	return t, nil
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, patch TransactionPatch) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, notFound(err)
	}
	patch.apply(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, notFound(err)
	}
	s.changed(ctx, ports.ActionUpdated, t)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return notFound(err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	s.changed(ctx, ports.ActionDeleted, core.Transaction{ID: id, UserID: userID})
	return nil
}

func (s *TransactionService) changed(ctx context.Context, action string, t core.Transaction) {
	s.cache.Invalidate(t.UserID)
	publish(ctx, s.publisher, ports.ChangeEvent{
		Entity: ports.EntityTransaction,
		Action: action,
		ID:     t.ID,
		UserID: t.UserID,
	})
}
