// Package ports declares the outbound interfaces the services depend on.
// Implementations live in internal/memory, internal/storage, internal/amqp
// and internal/sheets/google.
package ports

import (
	"context"
	"errors"

	"fincontrol/internal/core"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("conflict")
)

// Sync states of a transaction with respect to the spreadsheet mirror.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// Change event vocabulary.
const (
	EntityTransaction = "transaction"
	EntityBill        = "bill"
	EntityGoal        = "goal"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionPaid    = "paid"
)

// ChangeEvent announces that a record changed. It carries ids only;
// consumers reload the record from the store.
type ChangeEvent struct {
	Entity string
	Action string
	ID     string
	UserID string
}

type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
	}

	// TransactionStore lists newest created first.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	// BillStore lists by vencimento ascending.
	BillStore interface {
		CreateBill(ctx context.Context, b core.Bill) error
		GetBill(ctx context.Context, userID, id string) (core.Bill, error)
		ListBills(ctx context.Context, userID string) ([]core.Bill, error)
		UpdateBill(ctx context.Context, b core.Bill) error
		DeleteBill(ctx context.Context, userID, id string) error
	}

	GoalStore interface {
		CreateGoal(ctx context.Context, g core.Goal) error
		GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// SyncTracker records which transactions still need mirroring. Creating
	// or updating a transaction puts it back to pending. The mark methods
	// only apply to the version that was mirrored: when the row has moved on
	// they return ErrConflict and the row stays pending.
	SyncTracker interface {
		PendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkSynced(ctx context.Context, id string, version int64) error
		MarkSyncError(ctx context.Context, id string, version int64) error
	}

	// Store is everything a data backend provides.
	Store interface {
		UserStore
		TransactionStore
		BillStore
		GoalStore
		SyncTracker
		Ping(ctx context.Context) error
	}

	EventPublisher interface {
		PublishChange(ctx context.Context, ev ChangeEvent) error
	}

	// TransactionMirror keeps an external copy of transactions, one row per id.
	TransactionMirror interface {
		Upsert(ctx context.Context, t core.Transaction) (rowRef string, err error)
		Remove(ctx context.Context, id string) error
	}

	// TaxonomyReader lists the suggested categories.
	TaxonomyReader interface {
		List(ctx context.Context) (transactionCategories []string, billCategories []string, err error)
	}
)
