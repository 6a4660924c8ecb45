// Package services holds the use cases behind the REST API. Services own
// ids, timestamps and event publishing; stores only persist.
package services

import (
	"context"
	"errors"
	"log/slog"

	"fincontrol/internal/ports"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrBillAlreadyPaid    = errors.New("bill already paid")
)

// notFound maps the store's not-found onto the service error, keeping other errors intact.
func notFound(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Invalidator drops cached per-user data after a write.
type Invalidator interface {
	Invalidate(userID string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(string) {}

// publish sends a change event. The record is already saved, so a failure
// is logged and swallowed.
func publish(ctx context.Context, pub ports.EventPublisher, ev ports.ChangeEvent) {
	if pub == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping change event",
			"entity", ev.Entity, "action", ev.Action, "id", ev.ID)
		return
	}
	if err := pub.PublishChange(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", ev.Entity,
			"action", ev.Action,
			"id", ev.ID,
			"error", err)
	}
}
