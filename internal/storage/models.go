package storage

import "database/sql"

// Row types mirror the tables column for column. Amounts and dates are kept
// as TEXT and converted in repository.go.

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    string
}

type Transaction struct {
	ID            string
	UserID        string
	Tipo          string
	Categoria     string
	Subcategoria  string
	Valor         string
	Descricao     string
	Data          string
	PaymentMethod string
	IsPaid        bool
	CreatedAt     string
	Version       int64
	SyncStatus    string
}

type Bill struct {
	ID            string
	UserID        string
	Tipo          string
	Titulo        string
	Valor         string
	Vencimento    string
	Categoria     string
	Subcategoria  string
	Recorrencia   string
	Status        string
	DataPagamento sql.NullString
	Observacoes   string
	CreatedAt     string
}

type Goal struct {
	ID         string
	UserID     string
	Titulo     string
	ValorAlvo  string
	ValorAtual string
	Prazo      string
	CreatedAt  string
}
