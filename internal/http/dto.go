package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/services"
)

// amount accepts a JSON number or a numeric string using either decimal separator.
type amount decimal.Decimal

func (a *amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return core.ErrInvalidAmount
		}
		raw = s
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = amount(d)
	return nil
}

func (a *amount) value() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := decimal.Decimal(*a)
	return &d
}

// money renders as a JSON number with two decimal places.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type transactionRequest struct {
	Type          core.TransactionType `json:"tipo" validate:"required,oneof=entrada saida"`
	Category      string               `json:"categoria" validate:"required,max=100"`
	Subcategory   string               `json:"subcategoria" validate:"max=100"`
	Amount        *amount              `json:"valor" validate:"required"`
	Description   string               `json:"descricao" validate:"required,max=200"`
	Date          core.Date            `json:"data" validate:"required"`
	PaymentMethod core.PaymentMethod   `json:"payment_method" validate:"omitempty,oneof=dinheiro credito debito pix"`
	IsPaid        *bool                `json:"is_paid"`
}

func (r transactionRequest) input() services.TransactionInput {
	return services.TransactionInput{
		Type:          r.Type,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Amount:        *r.Amount.value(),
		Description:   r.Description,
		Date:          r.Date,
		PaymentMethod: r.PaymentMethod,
		IsPaid:        r.IsPaid,
	}
}

// transactionPatchRequest leaves null or absent fields untouched.
type transactionPatchRequest struct {
	Type          *core.TransactionType `json:"tipo" validate:"omitempty,oneof=entrada saida"`
	Category      *string               `json:"categoria" validate:"omitempty,max=100"`
	Subcategory   *string               `json:"subcategoria" validate:"omitempty,max=100"`
	Amount        *amount               `json:"valor"`
	Description   *string               `json:"descricao" validate:"omitempty,max=200"`
	Date          *core.Date            `json:"data"`
	PaymentMethod *core.PaymentMethod   `json:"payment_method" validate:"omitempty,oneof=dinheiro credito debito pix"`
	IsPaid        *bool                 `json:"is_paid"`
}

func (r transactionPatchRequest) patch() services.TransactionPatch {
	return services.TransactionPatch{
		Type:          r.Type,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Amount:        r.Amount.value(),
		Description:   r.Description,
		Date:          r.Date,
		PaymentMethod: r.PaymentMethod,
		IsPaid:        r.IsPaid,
	}
}

type transactionResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Type          core.TransactionType `json:"tipo"`
	Category      string               `json:"categoria"`
	Subcategory   string               `json:"subcategoria"`
	Amount        money                `json:"valor"`
	Description   string               `json:"descricao"`
	Date          core.Date            `json:"data"`
	PaymentMethod *string              `json:"payment_method"`
	IsPaid        bool                 `json:"is_paid"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          t.Type,
		Category:      t.Category,
		Subcategory:   t.Subcategory,
		Amount:        money(t.Amount),
		Description:   t.Description,
		Date:          t.Date,
		PaymentMethod: nullable(string(t.PaymentMethod)),
		IsPaid:        t.IsPaid,
		CreatedAt:     t.CreatedAt,
	}
}

type billRequest struct {
	Type        core.BillType   `json:"tipo" validate:"required,oneof=a_pagar a_receber"`
	Title       string          `json:"titulo" validate:"required,max=200"`
	Amount      *amount         `json:"valor" validate:"required"`
	DueDate     core.Date       `json:"vencimento" validate:"required"`
	Category    string          `json:"categoria" validate:"required,max=100"`
	Subcategory string          `json:"subcategoria" validate:"max=100"`
	Recurrence  core.Recurrence `json:"recorrencia" validate:"omitempty,oneof=mensal anual"`
	Notes       string          `json:"observacoes" validate:"max=1000"`
}

func (r billRequest) input() services.BillInput {
	return services.BillInput{
		Type:        r.Type,
		Title:       r.Title,
		Amount:      *r.Amount.value(),
		DueDate:     r.DueDate,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Recurrence:  r.Recurrence,
		Notes:       r.Notes,
	}
}

type billPatchRequest struct {
	Status *core.BillStatus `json:"status" validate:"omitempty,oneof=pendente pago atrasado"`
	PaidAt *core.Date       `json:"data_pagamento"`
}

type billResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        core.BillType   `json:"tipo"`
	Title       string          `json:"titulo"`
	Amount      money           `json:"valor"`
	DueDate     core.Date       `json:"vencimento"`
	Category    string          `json:"categoria"`
	Subcategory *string         `json:"subcategoria"`
	Status      core.BillStatus `json:"status"`
	Recurrence  *string         `json:"recorrencia"`
	Notes       *string         `json:"observacoes"`
	PaidAt      core.Date       `json:"data_pagamento"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toBillResponse(b core.Bill) billResponse {
	return billResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		Type:        b.Type,
		Title:       b.Title,
		Amount:      money(b.Amount),
		DueDate:     b.DueDate,
		Category:    b.Category,
		Subcategory: nullable(b.Subcategory),
		Status:      b.Status,
		Recurrence:  nullable(string(b.Recurrence)),
		Notes:       nullable(b.Notes),
		PaidAt:      b.PaidAt,
		CreatedAt:   b.CreatedAt,
	}
}

type goalRequest struct {
	Title    string    `json:"titulo" validate:"required,max=200"`
	Target   *amount   `json:"valor_alvo" validate:"required"`
	Deadline core.Date `json:"prazo" validate:"required"`
}

type goalPatchRequest struct {
	Title    *string    `json:"titulo" validate:"omitempty,max=200"`
	Target   *amount    `json:"valor_alvo"`
	Current  *amount    `json:"valor_atual"`
	Deadline *core.Date `json:"prazo"`
}

type goalResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"titulo"`
	Target    money     `json:"valor_alvo"`
	Current   money     `json:"valor_atual"`
	Progress  money     `json:"progresso"`
	Deadline  core.Date `json:"prazo"`
	CreatedAt time.Time `json:"created_at"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:        g.ID,
		UserID:    g.UserID,
		Title:     g.Title,
		Target:    money(g.Target),
		Current:   money(g.Current),
		Progress:  money(core.ProgressPercent(g)),
		Deadline:  g.Deadline,
		CreatedAt: g.CreatedAt,
	}
}

type statsResponse struct {
	TotalEntradas      money `json:"total_entradas"`
	TotalSaidas        money `json:"total_saidas"`
	Saldo              money `json:"saldo"`
	TransacoesRecentes int   `json:"transacoes_recentes"`
	MetasAtivas        int   `json:"metas_ativas"`
	ContasAVencer      int   `json:"contas_a_vencer"`
}

type categoryTotalResponse struct {
	Category string `json:"categoria"`
	Total    money  `json:"total"`
}

type monthlyResponse struct {
	Month    string `json:"month"`
	Entradas money  `json:"entradas"`
	Saidas   money  `json:"saidas"`
	Saldo    money  `json:"saldo"`
}

type categoriesResponse struct {
	Transactions []string `json:"transacoes"`
	Bills        []string `json:"contas"`
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
