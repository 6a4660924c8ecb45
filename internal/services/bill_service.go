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

type BillInput struct {
	Type        core.BillType
	Title       string
	Amount      decimal.Decimal
	DueDate     core.Date
	Category    string
	Subcategory string
	Recurrence  core.Recurrence
	Notes       string
}

// BillPatch is the only mutation a bill accepts after creation.
type BillPatch struct {
	Status *core.BillStatus
	PaidAt *core.Date
}

// BillService manages bills. Overdue is a read-time classification: the
// stored status only ever moves from pendente to pago.
type BillService struct {
	store     ports.BillStore
	publisher ports.EventPublisher
	cache     Invalidator
	now       func() time.Time
	newID     func() string
}

func NewBillService(store ports.BillStore, publisher ports.EventPublisher, cache Invalidator) *BillService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &BillService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *BillService) today() core.Date {
	return core.DateOf(s.now().UTC())
}

func (s *BillService) Create(ctx context.Context, userID string, in BillInput) (core.Bill, error) {
	b := core.Bill{
		ID:          s.newID(),
		UserID:      userID,
		Type:        in.Type,
		Title:       in.Title,
		Amount:      in.Amount,
		DueDate:     in.DueDate,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Recurrence:  in.Recurrence,
		Status:      core.Pendente,
		Notes:       in.Notes,
		CreatedAt:   s.now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	if err := s.store.CreateBill(ctx, b); err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	s.cache.Invalidate(userID)
	return s.present(b), nil
}

// List returns the user's bills by vencimento with their effective status.
// A non-empty filter keeps only bills whose effective status matches.
func (s *BillService) List(ctx context.Context, userID string, filter core.BillStatus) ([]core.Bill, error) {
	if filter != "" && !filter.Valid() {
		return nil, &core.ValidationError{Field: "status", Err: core.ErrInvalidStatus}
	}
	bills, err := s.store.ListBills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	today := s.today()
	out := make([]core.Bill, 0, len(bills))
	for _, b := range bills {
		b.Status = core.EffectiveStatus(b, today)
		if filter != "" && b.Status != filter {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Update applies a status change. Marking a bill pago stamps the payment
// date (today unless given) and, for recurring bills, creates the next
// occurrence. Reverting a paid bill fails with ErrBillAlreadyPaid.
func (s *BillService) Update(ctx context.Context, userID, id string, patch BillPatch) (core.Bill, error) {
	b, err := s.store.GetBill(ctx, userID, id)
	if err != nil {
		return core.Bill{}, notFound(err)
	}

	markPaid := false
	if patch.Status != nil {
		switch *patch.Status {
		case core.Pago:
			markPaid = b.Status != core.Pago
		case core.Pendente:
			if b.Status == core.Pago {
				return core.Bill{}, ErrBillAlreadyPaid
			}
		default:
			// atrasado is derived, never written
			return core.Bill{}, &core.ValidationError{Record: "bill " + id, Field: "status", Err: core.ErrInvalidStatus}
		}
		b.Status = *patch.Status
	}
	if patch.PaidAt != nil {
		b.PaidAt = *patch.PaidAt
	}
	if markPaid && b.PaidAt.IsZero() {
		b.PaidAt = s.today()
	}

	if err := s.store.UpdateBill(ctx, b); err != nil {
		return core.Bill{}, notFound(err)
	}
	s.cache.Invalidate(userID)

	if markPaid {
		slog.InfoContext(ctx, "Bill paid", log.NewFields().
			WithUser(userID).
			WithEntity(ports.EntityBill, b.ID).
			WithOperation(log.OpPay).ToSlice()...)
		publish(ctx, s.publisher, ports.ChangeEvent{
			Entity: ports.EntityBill,
			Action: ports.ActionPaid,
			ID:     b.ID,
			UserID: userID,
		})
		if err := s.rollover(ctx, b); err != nil {
			return core.Bill{}, err
		}
	}
	return s.present(b), nil
}

// rollover creates the next occurrence of a recurring bill.
func (s *BillService) rollover(ctx context.Context, paid core.Bill) error {
	due, ok := NextDueDate(paid.DueDate, paid.Recurrence)
	if !ok {
		return nil
	}
	next := paid
	next.ID = s.newID()
	next.DueDate = due
	next.Status = core.Pendente
	next.PaidAt = core.Date{}
	next.CreatedAt = s.now().UTC()

	if err := s.store.CreateBill(ctx, next); err != nil {
		return fmt.Errorf("create next occurrence of bill %s: %w", paid.ID, err)
	}
	slog.InfoContext(ctx, "Next bill occurrence created",
		"id", next.ID,
		"from", paid.ID,
		"vencimento", due.String())
	return nil
}

func (s *BillService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBill(ctx, userID, id); err != nil {
		return notFound(err)
	}
	s.cache.Invalidate(userID)
	return nil
}

func (s *BillService) present(b core.Bill) core.Bill {
	b.Status = core.EffectiveStatus(b, s.today())
	return b
}
