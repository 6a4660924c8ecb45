package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Entrada TransactionType = "entrada"
	Saida   TransactionType = "saida"

	APagar   BillType = "a_pagar"
	AReceber BillType = "a_receber"

	Pendente BillStatus = "pendente"
	Pago     BillStatus = "pago"
	Atrasado BillStatus = "atrasado"

	NoRecurrence Recurrence = ""
	Mensal       Recurrence = "mensal"
	Anual        Recurrence = "anual"

	Dinheiro PaymentMethod = "dinheiro"
	Credito  PaymentMethod = "credito"
	Debito   PaymentMethod = "debito"
	Pix      PaymentMethod = "pix"
)

const dateLayout = "2006-01-02"

type (
	TransactionType string
	BillType        string
	BillStatus      string
	Recurrence      string
	PaymentMethod   string

	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID            string
		UserID        string
		Type          TransactionType
		Category      string
		Subcategory   string
		Amount        decimal.Decimal
		Description   string
		Date          Date
		PaymentMethod PaymentMethod
		IsPaid        bool
		CreatedAt     time.Time
		// Version is assigned by the store: 1 on create, +1 on every update.
		Version int64
	}

	Bill struct {
		ID          string
		UserID      string
		Type        BillType
		Title       string
		Amount      decimal.Decimal
		DueDate     Date // vencimento
		Category    string
		Subcategory string
		Recurrence  Recurrence
		Status      BillStatus // persisted status, see EffectiveStatus
		PaidAt      Date       // zero until marked paid
		Notes       string
		CreatedAt   time.Time
	}

	Goal struct {
		ID        string
		UserID    string
		Title     string
		Target    decimal.Decimal // valor_alvo
		Current   decimal.Decimal // valor_atual
		Deadline  Date            // prazo
		CreatedAt time.Time
	}

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidRecurrence  = errors.New("invalid recurrence")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyTitle         = errors.New("empty title")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// ValidationError reports which record and field failed and why.
type ValidationError struct {
	Record string
	Field  string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("%s %s: %v", e.Record, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(record, field string, err error) error {
	return &ValidationError{Record: record, Field: field, Err: err}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day of t, keeping its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthKey returns the YYYY-MM bucket key.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// Before compares calendar days only.
func (d Date) Before(other Date) bool {
	return DateOf(d.Time).Time.Before(DateOf(other.Time).Time)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Entrada || t == Saida
}

func (t BillType) Valid() bool {
	return t == APagar || t == AReceber
}

func (s BillStatus) Valid() bool {
	switch s {
	case Pendente, Pago, Atrasado:
		return true
	}
	return false
}

func (r Recurrence) Valid() bool {
	switch r {
	case NoRecurrence, Mensal, Anual:
		return true
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case "", Dinheiro, Credito, Debito, Pix:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	rec := "transaction " + t.ID
	if !t.Type.Valid() {
		return invalid(rec, "tipo", ErrInvalidType)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid(rec, "categoria", ErrEmptyCategory)
	}
	if t.Amount.IsNegative() {
		return invalid(rec, "valor", ErrInvalidAmount)
	}
	if strings.TrimSpace(t.Description) == "" {
		return invalid(rec, "descricao", ErrEmptyDescription)
	}
	if utf8.RuneCountInString(t.Description) > 200 {
		return invalid(rec, "descricao", ErrDescriptionTooLong)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid(rec, "data", err)
	}
	if !t.PaymentMethod.Valid() {
		return invalid(rec, "payment_method", ErrInvalidPayment)
	}
	return nil
}

func (b Bill) Validate() error {
	rec := "bill " + b.ID
	if !b.Type.Valid() {
		return invalid(rec, "tipo", ErrInvalidType)
	}
	if strings.TrimSpace(b.Title) == "" {
		return invalid(rec, "titulo", ErrEmptyTitle)
	}
	if b.Amount.IsNegative() {
		return invalid(rec, "valor", ErrInvalidAmount)
	}
	if err := b.DueDate.Validate(); err != nil {
		return invalid(rec, "vencimento", err)
	}
	if strings.TrimSpace(b.Category) == "" {
		return invalid(rec, "categoria", ErrEmptyCategory)
	}
	if !b.Recurrence.Valid() {
		return invalid(rec, "recorrencia", ErrInvalidRecurrence)
	}
	if !b.Status.Valid() {
		return invalid(rec, "status", ErrInvalidStatus)
	}
	return nil
}

func (g Goal) Validate() error {
	rec := "goal " + g.ID
	if strings.TrimSpace(g.Title) == "" {
		return invalid(rec, "titulo", ErrEmptyTitle)
	}
	if !g.Target.IsPositive() {
		return invalid(rec, "valor_alvo", ErrInvalidAmount)
	}
	if g.Current.IsNegative() {
		return invalid(rec, "valor_atual", ErrInvalidAmount)
	}
	if err := g.Deadline.Validate(); err != nil {
		return invalid(rec, "prazo", err)
	}
	return nil
}
