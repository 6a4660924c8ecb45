package http

import (
	"context"

	"fincontrol/internal/core"
	"fincontrol/internal/services"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (services.AuthResult, error)
	Login(ctx context.Context, email, password string) (services.AuthResult, error)
	Authenticate(ctx context.Context, token string) (core.User, error)
	Profile(ctx context.Context, userID string) (core.User, error)
	UpdateProfile(ctx context.Context, userID string, name *string) (core.User, error)
}

type TransactionService interface {
	Create(ctx context.Context, userID string, in services.TransactionInput) (core.Transaction, error)
	List(ctx context.Context, userID string) ([]core.Transaction, error)
	Update(ctx context.Context, userID, id string, patch services.TransactionPatch) (core.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}

type BillService interface {
	Create(ctx context.Context, userID string, in services.BillInput) (core.Bill, error)
	List(ctx context.Context, userID string, filter core.BillStatus) ([]core.Bill, error)
	Update(ctx context.Context, userID, id string, patch services.BillPatch) (core.Bill, error)
	Delete(ctx context.Context, userID, id string) error
}

type GoalService interface {
	Create(ctx context.Context, userID string, in services.GoalInput) (core.Goal, error)
	List(ctx context.Context, userID string) ([]core.Goal, error)
	Update(ctx context.Context, userID, id string, patch services.GoalPatch) (core.Goal, error)
	Delete(ctx context.Context, userID, id string) error
}

type DashboardService interface {
	Stats(ctx context.Context, userID string) (services.DashboardStats, error)
	CategoryBreakdown(ctx context.Context, userID string) ([]core.CategoryTotal, error)
	MonthlyComparison(ctx context.Context, userID string) ([]core.MonthlyBucket, error)
	UpcomingBills(ctx context.Context, userID string) ([]core.Bill, error)
}
