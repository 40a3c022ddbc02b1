package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage"
)

func newRepository(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "contas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCard(t *testing.T, repo *storage.SQLiteRepository) core.CreditCard {
	t.Helper()
	card, err := repo.CreateCreditCard(context.Background(), core.CreditCard{
		Name:       "Main Card",
		Limit:      core.Money{Cents: 500000},
		DueDay:     10,
		ClosingDay: 25,
	})
	require.NoError(t, err)
	return card
}

func seedAccount(t *testing.T, repo *storage.SQLiteRepository) core.BankAccount {
	t.Helper()
	account, err := repo.CreateBankAccount(context.Background(), core.BankAccount{Name: "Checking"})
	require.NoError(t, err)
	return account
}

func TestGetOrCreateInvoiceIdempotent(t *testing.T) {
	repo := newRepository(t)
	card := seedCard(t, repo)
	ctx := context.Background()

	end := core.NewDate(2024, 2, 25)
	due := core.NewDate(2024, 3, 10)

	first, created, err := repo.GetOrCreateInvoice(ctx, card.ID, end, due)
	require.NoError(t, err)
	assert.True(t, created)

	// Same cycle again, even with a different due date, returns the
	// existing invoice untouched.
	second, created, err := repo.GetOrCreateInvoice(ctx, card.ID, end, core.NewDate(2024, 4, 10))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, due, second.DueDate)

	invoices, err := repo.ListInvoices(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
}

func TestGetOrCreateCategoryReusesRow(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	first, err := repo.GetOrCreateCategory(ctx, core.PaymentCategoryName)
	require.NoError(t, err)
	second, err := repo.GetOrCreateCategory(ctx, core.PaymentCategoryName)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateTransactionsRollsBackOnFailure(t *testing.T) {
	repo := newRepository(t)
	card := seedCard(t, repo)
	ctx := context.Background()

	inv, _, err := repo.GetOrCreateInvoice(ctx, card.ID, core.NewDate(2024, 2, 25), core.NewDate(2024, 3, 10))
	require.NoError(t, err)

	// The second draft references an invoice that does not exist, so
	// the foreign key fails mid-batch and the first row must be gone.
	bogus := inv.ID + 100
	_, err = repo.CreateTransactions(ctx, []core.Transaction{
		{
			Description:  "tv (1/2)",
			Amount:       core.Money{Cents: 5000},
			Type:         core.Expense,
			Date:         core.NewDate(2024, 2, 1),
			CreditCardID: &card.ID,
			InvoiceID:    &inv.ID,
		},
		{
			Description:  "tv (2/2)",
			Amount:       core.Money{Cents: 5000},
			Type:         core.Expense,
			Date:         core.NewDate(2024, 3, 1),
			CreditCardID: &card.ID,
			InvoiceID:    &bogus,
		},
	})
	require.Error(t, err)

	all, err := repo.ListTransactions(ctx, services.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	total, err := repo.InvoiceTotal(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.Cents)
}

func TestPayInvoiceGuardsRepayment(t *testing.T) {
	repo := newRepository(t)
	card := seedCard(t, repo)
	account := seedAccount(t, repo)
	ctx := context.Background()

	inv, _, err := repo.GetOrCreateInvoice(ctx, card.ID, core.NewDate(2024, 2, 25), core.NewDate(2024, 3, 10))
	require.NoError(t, err)

	payment := core.Transaction{
		Description:      "Invoice payment Main Card",
		Amount:           core.Money{Cents: 5000},
		Type:             core.Expense,
		Date:             core.NewDate(2024, 3, 10),
		BankAccountID:    &account.ID,
		IsInvoicePayment: true,
	}

	created, err := repo.PayInvoice(ctx, inv.ID, core.NewDate(2024, 3, 10), payment)
	require.NoError(t, err)
	assert.True(t, created.IsInvoicePayment)

	paid, err := repo.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, core.NewDate(2024, 3, 10), *paid.PaymentDate)

	_, err = repo.PayInvoice(ctx, inv.ID, core.NewDate(2024, 3, 11), payment)
	assert.ErrorIs(t, err, core.ErrInvoiceAlreadyPaid)

	_, err = repo.PayInvoice(ctx, inv.ID+100, core.NewDate(2024, 3, 11), payment)
	assert.ErrorIs(t, err, core.ErrInvoiceNotFound)

	// The failed attempts recorded no extra payment rows.
	all, err := repo.ListTransactions(ctx, services.TransactionFilter{BankOnly: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newRepository(t)
	card := seedCard(t, repo)
	account := seedAccount(t, repo)
	ctx := context.Background()

	drafts := []core.Transaction{
		{Description: "salary", Amount: core.Money{Cents: 100000}, Type: core.Income, Date: core.NewDate(2024, 2, 5), BankAccountID: &account.ID},
		{Description: "rent", Amount: core.Money{Cents: 30000}, Type: core.Expense, Date: core.NewDate(2024, 2, 5), BankAccountID: &account.ID},
		{Description: "groceries", Amount: core.Money{Cents: 12000}, Type: core.Expense, Date: core.NewDate(2024, 2, 20), CreditCardID: &card.ID},
		{Description: "march gym", Amount: core.Money{Cents: 8000}, Type: core.Expense, Date: core.NewDate(2024, 3, 1), BankAccountID: &account.ID},
	}
	for _, d := range drafts {
		_, err := repo.CreateTransaction(ctx, d)
		require.NoError(t, err)
	}

	feb, err := repo.ListTransactions(ctx, services.TransactionFilter{Year: 2024, Month: 2})
	require.NoError(t, err)
	require.Len(t, feb, 3)
	// Newest first, ties in creation order.
	assert.Equal(t, "groceries", feb[0].Description)
	assert.Equal(t, "salary", feb[1].Description)
	assert.Equal(t, "rent", feb[2].Description)

	bankFeb, err := repo.ListTransactions(ctx, services.TransactionFilter{Year: 2024, Month: 2, BankOnly: true})
	require.NoError(t, err)
	require.Len(t, bankFeb, 2)

	income, expense, err := repo.SumBankMovements(ctx, core.NewDate(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(100000), income.Cents)
	assert.Equal(t, int64(30000), expense.Cents)
}

func TestDeleteTransaction(t *testing.T) {
	repo := newRepository(t)
	account := seedAccount(t, repo)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Description:   "typo entry",
		Amount:        core.Money{Cents: 100},
		Type:          core.Expense,
		Date:          core.NewDate(2024, 2, 5),
		BankAccountID: &account.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTransaction(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, created.ID), core.ErrTransactionNotFound)

	_, err = repo.GetTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)
}

func TestInvoiceStartDateFollowsPreviousCycle(t *testing.T) {
	repo := newRepository(t)
	card := seedCard(t, repo)
	ctx := context.Background()

	first, _, err := repo.GetOrCreateInvoice(ctx, card.ID, core.NewDate(2024, 1, 25), core.NewDate(2024, 2, 10))
	require.NoError(t, err)
	second, _, err := repo.GetOrCreateInvoice(ctx, card.ID, core.NewDate(2024, 2, 25), core.NewDate(2024, 3, 10))
	require.NoError(t, err)

	// First cycle has no predecessor and falls back to a 30-day window.
	start, err := repo.InvoiceStartDate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2023, 12, 27), start)

	start, err = repo.InvoiceStartDate(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 1, 26), start)
}
