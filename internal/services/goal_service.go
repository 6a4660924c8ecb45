package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

type GoalInput struct {
	Title    string
	Target   decimal.Decimal
	Deadline core.Date
}

type GoalPatch struct {
	Title    *string
	Target   *decimal.Decimal
	Current  *decimal.Decimal
	Deadline *core.Date
}

type GoalService struct {
	store ports.GoalStore
	cache Invalidator
	now   func() time.Time
	newID func() string
}

func NewGoalService(store ports.GoalStore, cache Invalidator) *GoalService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &GoalService{store: store, cache: cache, now: time.Now, newID: uuid.NewString}
}

// Create starts every goal with valor_atual at zero.
func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:        s.newID(),
		UserID:    userID,
		Title:     in.Title,
		Target:    in.Target,
		Current:   decimal.Zero,
		Deadline:  in.Deadline,
		CreatedAt: s.now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.cache.Invalidate(userID)
	return g, nil
}

func (s *GoalService) List(ctx context.Context, userID string) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) Update(ctx context.Context, userID, id string, patch GoalPatch) (core.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return core.Goal{}, notFound(err)
	}
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Target != nil {
		g.Target = *patch.Target
	}
	if patch.Current != nil {
		g.Current = *patch.Current
	}
	if patch.Deadline != nil {
		g.Deadline = *patch.Deadline
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, notFound(err)
	}
	s.cache.Invalidate(userID)
	return g, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
		return notFound(err)
	}
	s.cache.Invalidate(userID)
	return nil
}
