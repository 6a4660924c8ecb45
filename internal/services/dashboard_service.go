package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fincontrol/internal/cache"
	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

// UpcomingWindowDays is how far ahead the dashboard looks for bills to pay.
const UpcomingWindowDays = 7

// DashboardStats extends the core totals with goal and bill counters.
type DashboardStats struct {
	core.Stats
	MetasAtivas   int
	ContasAVencer int
}

// snapshot is one user's records as of the last load.
type snapshot struct {
	txs   []core.Transaction
	bills []core.Bill
	goals []core.Goal
}

// DashboardReader is the subset of the store the dashboard reads.
type DashboardReader interface {
	ports.TransactionStore
	ports.BillStore
	ports.GoalStore
}

// DashboardService serves analytics from a cached per-user snapshot. The
// snapshot is dropped on every write; date-dependent figures are computed
// against today on each call, so a cached snapshot never goes stale by
// crossing midnight.
type DashboardService struct {
	store DashboardReader
	cache *cache.LRUCache[snapshot]
	now   func() time.Time
}

func NewDashboardService(store DashboardReader, size int, ttl time.Duration) *DashboardService {
	return &DashboardService{
		store: store,
		cache: cache.NewLRUCache[snapshot](size, ttl),
		now:   time.Now,
	}
}

// Cache exposes the snapshot cache for periodic cleaning.
func (s *DashboardService) Cache() cache.Cleaner {
	return s.cache
}

// Invalidate drops the cached snapshot of userID.
func (s *DashboardService) Invalidate(userID string) {
	s.cache.Delete(userID)
}

func (s *DashboardService) today() core.Date {
	return core.DateOf(s.now().UTC())
}

func (s *DashboardService) load(ctx context.Context, userID string) (snapshot, error) {
	return s.cache.GetOrLoad(userID, func() (snapshot, error) {
		slog.DebugContext(ctx, "Loading dashboard snapshot", "user_id", userID)
		txs, err := s.store.ListTransactions(ctx, userID)
		if err != nil {
			return snapshot{}, fmt.Errorf("list transactions: %w", err)
		}
		bills, err := s.store.ListBills(ctx, userID)
		if err != nil {
			return snapshot{}, fmt.Errorf("list bills: %w", err)
		}
		goals, err := s.store.ListGoals(ctx, userID)
		if err != nil {
			return snapshot{}, fmt.Errorf("list goals: %w", err)
		}
		return snapshot{txs: txs, bills: bills, goals: goals}, nil
	})
}

func (s *DashboardService) Stats(ctx context.Context, userID string) (DashboardStats, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		Stats:         core.ComputeStats(snap.txs),
		MetasAtivas:   len(snap.goals),
		ContasAVencer: len(core.UpcomingBills(snap.bills, s.today(), UpcomingWindowDays)),
	}, nil
}

func (s *DashboardService) CategoryBreakdown(ctx context.Context, userID string) ([]core.CategoryTotal, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.CategoryBreakdown(snap.txs), nil
}

func (s *DashboardService) MonthlyComparison(ctx context.Context, userID string) ([]core.MonthlyBucket, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.AggregateByMonth(snap.txs)
}

// UpcomingBills lists pendente bills due within the next week, with their
// effective status.
func (s *DashboardService) UpcomingBills(ctx context.Context, userID string) ([]core.Bill, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.UpcomingBills(snap.bills, s.today(), UpcomingWindowDays), nil
}
