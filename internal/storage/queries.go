package storage

import "context"

const createUser = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, arg User) error {
	_, err := q.db.ExecContext(ctx, createUser, arg.ID, arg.Name, arg.Email, arg.PasswordHash, arg.CreatedAt)
	return err
}

const getUser = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByEmail = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const updateUser = `UPDATE users SET name = ?, email = ? WHERE id = ?`

func (q *Queries) UpdateUser(ctx context.Context, arg User) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUser, arg.Name, arg.Email, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionColumns = `id, user_id, tipo, categoria, subcategoria, valor, descricao, data, payment_method, is_paid, created_at, version, sync_status`

func scanTransaction(scan func(...interface{}) error) (Transaction, error) {
	var i Transaction
	err := scan(
		&i.ID, &i.UserID, &i.Tipo, &i.Categoria, &i.Subcategoria, &i.Valor, &i.Descricao,
		&i.Data, &i.PaymentMethod, &i.IsPaid, &i.CreatedAt, &i.Version, &i.SyncStatus,
	)
	return i, err
}

const createTransaction = `INSERT INTO transactions (
    id, user_id, tipo, categoria, subcategoria, valor, descricao, data, payment_method, is_paid, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.UserID, arg.Tipo, arg.Categoria, arg.Subcategoria, arg.Valor,
		arg.Descricao, arg.Data, arg.PaymentMethod, arg.IsPaid, arg.CreatedAt,
	)
	return err
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id, userID string) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, userID).Scan)
}

const listTransactions = `SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`

func (q *Queries) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	return q.queryTransactions(ctx, listTransactions, userID)
}

const updateTransaction = `UPDATE transactions SET
    tipo = ?, categoria = ?, subcategoria = ?, valor = ?, descricao = ?, data = ?,
    payment_method = ?, is_paid = ?, version = version + 1, sync_status = 'pending'
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Tipo, arg.Categoria, arg.Subcategoria, arg.Valor, arg.Descricao, arg.Data,
		arg.PaymentMethod, arg.IsPaid, arg.ID, arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getPendingSyncTransactions = `SELECT ` + transactionColumns + ` FROM transactions
WHERE sync_status = 'pending'
ORDER BY created_at ASC, rowid ASC
LIMIT ?`

func (q *Queries) GetPendingSyncTransactions(ctx context.Context, limit int64) ([]Transaction, error) {
	return q.queryTransactions(ctx, getPendingSyncTransactions, limit)
}

const setTransactionSyncStatus = `UPDATE transactions SET sync_status = ? WHERE id = ? AND version = ?`

func (q *Queries) SetTransactionSyncStatus(ctx context.Context, id string, version int64, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, setTransactionSyncStatus, status, id, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTransactionVersion = `SELECT version FROM transactions WHERE id = ?`

func (q *Queries) GetTransactionVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, getTransactionVersion, id).Scan(&version)
	return version, err
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const billColumns = `id, user_id, tipo, titulo, valor, vencimento, categoria, subcategoria, recorrencia, status, data_pagamento, observacoes, created_at`

func scanBill(scan func(...interface{}) error) (Bill, error) {
	var i Bill
	err := scan(
		&i.ID, &i.UserID, &i.Tipo, &i.Titulo, &i.Valor, &i.Vencimento, &i.Categoria,
		&i.Subcategoria, &i.Recorrencia, &i.Status, &i.DataPagamento, &i.Observacoes, &i.CreatedAt,
	)
	return i, err
}

const createBill = `INSERT INTO bills (
    id, user_id, tipo, titulo, valor, vencimento, categoria, subcategoria, recorrencia, status, data_pagamento, observacoes, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateBill(ctx context.Context, arg Bill) error {
	_, err := q.db.ExecContext(ctx, createBill,
		arg.ID, arg.UserID, arg.Tipo, arg.Titulo, arg.Valor, arg.Vencimento, arg.Categoria,
		arg.Subcategoria, arg.Recorrencia, arg.Status, arg.DataPagamento, arg.Observacoes, arg.CreatedAt,
	)
	return err
}

const getBill = `SELECT ` + billColumns + ` FROM bills WHERE id = ? AND user_id = ?`

func (q *Queries) GetBill(ctx context.Context, id, userID string) (Bill, error) {
	return scanBill(q.db.QueryRowContext(ctx, getBill, id, userID).Scan)
}

const listBills = `SELECT ` + billColumns + ` FROM bills WHERE user_id = ? ORDER BY vencimento ASC, id ASC`

func (q *Queries) ListBills(ctx context.Context, userID string) ([]Bill, error) {
	rows, err := q.db.QueryContext(ctx, listBills, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Bill
	for rows.Next() {
		i, err := scanBill(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateBill = `UPDATE bills SET
    tipo = ?, titulo = ?, valor = ?, vencimento = ?, categoria = ?, subcategoria = ?,
    recorrencia = ?, status = ?, data_pagamento = ?, observacoes = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateBill(ctx context.Context, arg Bill) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBill,
		arg.Tipo, arg.Titulo, arg.Valor, arg.Vencimento, arg.Categoria, arg.Subcategoria,
		arg.Recorrencia, arg.Status, arg.DataPagamento, arg.Observacoes, arg.ID, arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBill = `DELETE FROM bills WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteBill(ctx context.Context, id, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBill, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const goalColumns = `id, user_id, titulo, valor_alvo, valor_atual, prazo, created_at`

func scanGoal(scan func(...interface{}) error) (Goal, error) {
	var i Goal
	err := scan(&i.ID, &i.UserID, &i.Titulo, &i.ValorAlvo, &i.ValorAtual, &i.Prazo, &i.CreatedAt)
	return i, err
}

const createGoal = `INSERT INTO goals (id, user_id, titulo, valor_alvo, valor_atual, prazo, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateGoal(ctx context.Context, arg Goal) error {
	_, err := q.db.ExecContext(ctx, createGoal,
		arg.ID, arg.UserID, arg.Titulo, arg.ValorAlvo, arg.ValorAtual, arg.Prazo, arg.CreatedAt,
	)
	return err
}

const getGoal = `SELECT ` + goalColumns + ` FROM goals WHERE id = ? AND user_id = ?`

func (q *Queries) GetGoal(ctx context.Context, id, userID string) (Goal, error) {
	return scanGoal(q.db.QueryRowContext(ctx, getGoal, id, userID).Scan)
}

const listGoals = `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ? ORDER BY created_at ASC, id ASC`

func (q *Queries) ListGoals(ctx context.Context, userID string) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		i, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateGoal = `UPDATE goals SET titulo = ?, valor_alvo = ?, valor_atual = ?, prazo = ? WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateGoal(ctx context.Context, arg Goal) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateGoal,
		arg.Titulo, arg.ValorAlvo, arg.ValorAtual, arg.Prazo, arg.ID, arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteGoal = `DELETE FROM goals WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteGoal(ctx context.Context, id, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteGoal, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
