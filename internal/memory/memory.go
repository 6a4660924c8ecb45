// Package memory is an in-process implementation of ports.Store, used for
// local development and tests. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

type txRecord struct {
	tx     core.Transaction
	seq    int
	status string
}

type Store struct {
	mu    sync.Mutex
	seq   int
	users map[string]core.User
	txs   map[string]*txRecord
	bills map[string]core.Bill
	goals map[string]core.Goal
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users: make(map[string]core.User),
		txs:   make(map[string]*txRecord),
		bills: make(map[string]core.Bill),
		goals: make(map[string]core.Goal),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ports.ErrConflict
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return ports.ErrConflict
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, ports.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, ports.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ports.ErrNotFound
	}
	s.users[u.ID] = u
	return nil
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[t.ID]; ok {
		return ports.ErrConflict
	}
	s.seq++
	t.Version = 1
	s.txs[t.ID] = &txRecord{tx: t, seq: s.seq, status: ports.SyncPending}
	return nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[id]
	if !ok || rec.tx.UserID != userID {
		return core.Transaction{}, ports.ErrNotFound
	}
	return rec.tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	recs := make([]*txRecord, 0)
	for _, rec := range s.txs {
		if rec.tx.UserID == userID {
			recs = append(recs, rec)
		}
	}
	s.mu.Unlock()

	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.tx.CreatedAt.Equal(b.tx.CreatedAt) {
			return a.tx.CreatedAt.After(b.tx.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]core.Transaction, len(recs))
	for i, rec := range recs {
		out[i] = rec.tx
	}
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[t.ID]
	if !ok || rec.tx.UserID != t.UserID {
		return ports.ErrNotFound
	}
	t.Version = rec.tx.Version + 1
	rec.tx = t
	rec.status = ports.SyncPending
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[id]
	if !ok || rec.tx.UserID != userID {
		return ports.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

// Sync tracking

func (s *Store) PendingSync(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*txRecord, 0)
	for _, rec := range s.txs {
		if rec.status == ports.SyncPending {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]core.Transaction, len(recs))
	for i, rec := range recs {
		out[i] = rec.tx
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id string, version int64) error {
	return s.setSyncStatus(id, version, ports.SyncDone)
}

func (s *Store) MarkSyncError(_ context.Context, id string, version int64) error {
	return s.setSyncStatus(id, version, ports.SyncError)
}

func (s *Store) setSyncStatus(id string, version int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[id]
	if !ok {
		return ports.ErrNotFound
	}
	if rec.tx.Version != version {
		return ports.ErrConflict
	}
	rec.status = status
	return nil
}

// SyncStatus reports the mirror state of a transaction.
func (s *Store) SyncStatus(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[id]
	if !ok {
		return "", false
	}
	return rec.status, true
}

// Bills

func (s *Store) CreateBill(_ context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[b.ID]; ok {
		return ports.ErrConflict
	}
	s.bills[b.ID] = b
	return nil
}

func (s *Store) GetBill(_ context.Context, userID, id string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return core.Bill{}, ports.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBills(_ context.Context, userID string) ([]core.Bill, error) {
	s.mu.Lock()
	out := make([]core.Bill, 0)
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bills[b.ID]
	if !ok || existing.UserID != b.UserID {
		return ports.ErrNotFound
	}
	s.bills[b.ID] = b
	return nil
}

func (s *Store) DeleteBill(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return ports.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}

// Goals

func (s *Store) CreateGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; ok {
		return ports.ErrConflict
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, ports.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.Lock()
	out := make([]core.Goal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return ports.ErrNotFound
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return ports.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}
