// Package storage implements the durable ledger store on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"contas/internal/core"
	"contas/internal/services"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ services.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// dateValue converts a Date to its stored YYYY-MM-DD text form, which
// sorts and range-compares correctly.
func dateValue(d core.Date) string {
	return d.String()
}

func scanDate(s string) (core.Date, error) {
	return core.ParseDate(s)
}

// monthRange returns the inclusive start and exclusive end text dates
// of a calendar month.
func monthRange(year, month int) (string, string) {
	start := core.NewDate(year, month, 1)
	return dateValue(start), dateValue(core.AddMonths(start, 1))
}

func (r *SQLiteRepository) GetOrCreateCategory(ctx context.Context, name string) (core.Category, error) {
	if name == "" {
		return core.Category{}, core.ErrCategoryNotFound
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("upsert category: %w", err)
	}

	var c core.Category
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE name = ?`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("load category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bank_accounts (name, balance_cents) VALUES (?, ?)`,
		a.Name, a.Balance.Cents)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("insert bank account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("bank account id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetBankAccount(ctx context.Context, id int64) (core.BankAccount, error) {
	var a core.BankAccount
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance_cents FROM bank_accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Balance.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BankAccount{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("load bank account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListBankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance_cents FROM bank_accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	var out []core.BankAccount
	for rows.Next() {
		var a core.BankAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_cards (name, limit_cents, due_day, closing_day) VALUES (?, ?, ?, ?)`,
		c.Name, c.Limit.Cents, c.DueDay, c.ClosingDay)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("insert credit card: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("credit card id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCreditCard(ctx context.Context, id int64) (core.CreditCard, error) {
	var c core.CreditCard
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, limit_cents, due_day, closing_day FROM credit_cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Limit.Cents, &c.DueDay, &c.ClosingDay)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("load credit card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, limit_cents, due_day, closing_day FROM credit_cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.Name, &c.Limit.Cents, &c.DueDay, &c.ClosingDay); err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
