package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contas/internal/core"
	"contas/internal/services"
)

// execer covers *sql.DB and *sql.Tx so transaction inserts can run
// standalone or inside a batch.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, e execer, t core.Transaction) (core.Transaction, error) {
	res, err := e.ExecContext(ctx,
		`INSERT INTO transactions
		 (description, amount_cents, type, date, category_id, bank_account_id, credit_card_id, invoice_id, is_invoice_payment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Amount.Cents, string(t.Type), dateValue(t.Date),
		t.CategoryID, t.BankAccountID, t.CreditCardID, t.InvoiceID, t.IsInvoicePayment)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := insertTransaction(ctx, r.db, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return created, nil
}

// CreateTransactions persists the batch in one SQL transaction. A
// failure on any row rolls back the whole batch.
func (r *SQLiteRepository) CreateTransactions(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction batch: %w", err)
	}
	defer tx.Rollback()

	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		created, err := insertTransaction(ctx, tx, t)
		if err != nil {
			return nil, fmt.Errorf("insert transaction batch: %w", err)
		}
		out = append(out, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction batch: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction result: %w", err)
	}
	if affected == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

const selectTransaction = `SELECT id, description, amount_cents, type, date,
	category_id, bank_account_id, credit_card_id, invoice_id, is_invoice_payment
	FROM transactions`

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f services.TransactionFilter) ([]core.Transaction, error) {
	query := selectTransaction
	var (
		clauses []string
		args    []any
	)
	if f.Year != 0 && f.Month != 0 {
		start, end := monthRange(f.Year, f.Month)
		clauses = append(clauses, `date >= ? AND date < ?`)
		args = append(args, start, end)
	}
	if f.BankOnly {
		clauses = append(clauses, `bank_account_id IS NOT NULL`)
	}
	if f.ExcludePayments {
		clauses = append(clauses, `is_invoice_payment = 0`)
	}
	for i, c := range clauses {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY date DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumBankMovements totals bank-account income and expense strictly
// before the given date. Credit-card transactions are left out; past
// invoice payments count here because the synthetic payment row is
// the bank-side record of that outflow.
func (r *SQLiteRepository) SumBankMovements(ctx context.Context, before core.Date) (core.Money, core.Money, error) {
	var income, expense core.Money
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		 FROM transactions
		 WHERE bank_account_id IS NOT NULL AND date < ?`,
		dateValue(before)).Scan(&income.Cents, &expense.Cents)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum bank movements: %w", err)
	}
	return income, expense, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		typ    string
		date   string
		catID  sql.NullInt64
		bankID sql.NullInt64
		cardID sql.NullInt64
		invID  sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &typ, &date,
		&catID, &bankID, &cardID, &invID, &t.IsInvoicePayment); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	var err error
	if t.Date, err = scanDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction date: %w", err)
	}
	t.CategoryID = nullableID(catID)
	t.BankAccountID = nullableID(bankID)
	t.CreditCardID = nullableID(cardID)
	t.InvoiceID = nullableID(invID)
	return t, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
