package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contas/internal/core"
)

// GetOrCreateInvoice is the atomic upsert behind invoice resolution.
// The UNIQUE(credit_card_id, end_date) index makes the insert a
// no-op when the cycle's invoice already exists, so concurrent
// resolvers for the same new cycle converge on one row. An existing
// invoice's due date is never overwritten.
func (r *SQLiteRepository) GetOrCreateInvoice(ctx context.Context, cardID int64, endDate, dueDate core.Date) (core.Invoice, bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (credit_card_id, end_date, due_date)
		 VALUES (?, ?, ?)
		 ON CONFLICT(credit_card_id, end_date) DO NOTHING`,
		cardID, dateValue(endDate), dateValue(dueDate))
	if err != nil {
		return core.Invoice{}, false, fmt.Errorf("upsert invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Invoice{}, false, fmt.Errorf("upsert invoice result: %w", err)
	}

	inv, err := r.FindInvoice(ctx, cardID, endDate)
	if err != nil {
		return core.Invoice{}, false, err
	}
	if inv == nil {
		return core.Invoice{}, false, core.ErrInvoiceNotFound
	}
	return *inv, affected > 0, nil
}

func (r *SQLiteRepository) FindInvoice(ctx context.Context, cardID int64, endDate core.Date) (*core.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, credit_card_id, end_date, due_date, is_paid, payment_date
		 FROM invoices WHERE credit_card_id = ? AND end_date = ?`,
		cardID, dateValue(endDate))
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return &inv, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id int64) (core.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, credit_card_id, end_date, due_date, is_paid, payment_date
		 FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, core.ErrInvoiceNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("load invoice: %w", err)
	}
	return inv, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, cardID int64) ([]core.Invoice, error) {
	query := `SELECT id, credit_card_id, end_date, due_date, is_paid, payment_date
		 FROM invoices`
	args := []any{}
	if cardID != 0 {
		query += ` WHERE credit_card_id = ?`
		args = append(args, cardID)
	}
	query += ` ORDER BY end_date DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *SQLiteRepository) InvoiceTotal(ctx context.Context, invoiceID int64) (core.Money, error) {
	var total core.Money
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE invoice_id = ?`,
		invoiceID).Scan(&total.Cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("invoice total: %w", err)
	}
	return total, nil
}

// InvoiceStartDate derives the billing period start: the day after
// the card's previous statement closed, or 29 days before the end
// date for the card's first invoice.
func (r *SQLiteRepository) InvoiceStartDate(ctx context.Context, inv core.Invoice) (core.Date, error) {
	var prevEnd string
	err := r.db.QueryRowContext(ctx,
		`SELECT end_date FROM invoices
		 WHERE credit_card_id = ? AND end_date < ?
		 ORDER BY end_date DESC LIMIT 1`,
		inv.CreditCardID, dateValue(inv.EndDate)).Scan(&prevEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return inv.EndDate.AddDays(-29), nil
	}
	if err != nil {
		return core.Date{}, fmt.Errorf("previous invoice: %w", err)
	}
	prev, err := scanDate(prevEnd)
	if err != nil {
		return core.Date{}, fmt.Errorf("previous invoice end date: %w", err)
	}
	return prev.AddDays(1), nil
}

func (r *SQLiteRepository) ListUnpaidInvoicesDue(ctx context.Context, year, month int) ([]core.Invoice, error) {
	start, end := monthRange(year, month)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, credit_card_id, end_date, due_date, is_paid, payment_date
		 FROM invoices
		 WHERE is_paid = 0 AND due_date >= ? AND due_date < ?
		 ORDER BY due_date, id`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("list unpaid invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *SQLiteRepository) ListPaidInvoices(ctx context.Context, year, month int, basis core.PaidBasis) ([]core.Invoice, error) {
	column := "payment_date"
	if basis == core.PaidByDueDate {
		column = "due_date"
	}
	start, end := monthRange(year, month)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, credit_card_id, end_date, due_date, is_paid, payment_date
		 FROM invoices
		 WHERE is_paid = 1 AND `+column+` >= ? AND `+column+` < ?
		 ORDER BY `+column+`, id`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("list paid invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// PayInvoice flips the invoice to paid and records the synthetic
// payment transaction in one SQL transaction. The guarded update is
// the re-payment barrier: zero affected rows on an existing invoice
// means it was already paid.
func (r *SQLiteRepository) PayInvoice(ctx context.Context, invoiceID int64, paymentDate core.Date, payment core.Transaction) (core.Transaction, error) {
	if err := payment.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin pay invoice: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE invoices SET is_paid = 1, payment_date = ? WHERE id = ? AND is_paid = 0`,
		dateValue(paymentDate), invoiceID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("mark invoice paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("mark invoice paid result: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM invoices WHERE id = ?`, invoiceID).Scan(&exists); err != nil {
			return core.Transaction{}, fmt.Errorf("check invoice: %w", err)
		}
		if exists == 0 {
			return core.Transaction{}, core.ErrInvoiceNotFound
		}
		return core.Transaction{}, core.ErrInvoiceAlreadyPaid
	}

	created, err := insertTransaction(ctx, tx, payment)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert payment transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit pay invoice: %w", err)
	}
	return created, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (core.Invoice, error) {
	var (
		inv         core.Invoice
		endDate     string
		dueDate     string
		paymentDate sql.NullString
	)
	if err := row.Scan(&inv.ID, &inv.CreditCardID, &endDate, &dueDate, &inv.IsPaid, &paymentDate); err != nil {
		return core.Invoice{}, err
	}
	var err error
	if inv.EndDate, err = scanDate(endDate); err != nil {
		return core.Invoice{}, fmt.Errorf("invoice end date: %w", err)
	}
	if inv.DueDate, err = scanDate(dueDate); err != nil {
		return core.Invoice{}, fmt.Errorf("invoice due date: %w", err)
	}
	if paymentDate.Valid {
		d, err := scanDate(paymentDate.String)
		if err != nil {
			return core.Invoice{}, fmt.Errorf("invoice payment date: %w", err)
		}
		inv.PaymentDate = &d
	}
	return inv, nil
}

func collectInvoices(rows *sql.Rows) ([]core.Invoice, error) {
	var out []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
