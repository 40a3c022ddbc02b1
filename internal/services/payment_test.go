package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contas/internal/core"
	"contas/internal/services"
)

func TestPayInvoice(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	account := newAccount(t, store)
	ctx := context.Background()

	for _, cents := range []int64{4500, 12050} {
		_, err := ledger.CreateTransaction(ctx, core.Transaction{
			Description:  "card purchase",
			Amount:       core.Money{Cents: cents},
			Type:         core.Expense,
			Date:         core.NewDate(2024, 1, 10),
			CreditCardID: &card.ID,
		})
		require.NoError(t, err)
	}

	invoices, err := store.ListInvoices(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	payment, err := ledger.PayInvoice(ctx, invoices[0].ID, core.NewDate(2024, 2, 10), account.ID)
	require.NoError(t, err)

	// One expense against the bank account, worth the invoice total.
	assert.Equal(t, int64(16550), payment.Amount.Cents)
	assert.Equal(t, core.Expense, payment.Type)
	assert.True(t, payment.IsInvoicePayment)
	require.NotNil(t, payment.BankAccountID)
	assert.Equal(t, account.ID, *payment.BankAccountID)

	// Categorized under the reserved invoice-payment category.
	require.NotNil(t, payment.CategoryID)
	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, core.PaymentCategoryName, categories[0].Name)

	paid, err := store.GetInvoice(ctx, invoices[0].ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, core.NewDate(2024, 2, 10), *paid.PaymentDate)
}

func TestPayInvoiceTwiceFails(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	account := newAccount(t, store)
	ctx := context.Background()

	_, err := ledger.CreateTransaction(ctx, core.Transaction{
		Description:  "card purchase",
		Amount:       core.Money{Cents: 5000},
		Type:         core.Expense,
		Date:         core.NewDate(2024, 1, 10),
		CreditCardID: &card.ID,
	})
	require.NoError(t, err)

	invoices, err := store.ListInvoices(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	_, err = ledger.PayInvoice(ctx, invoices[0].ID, core.NewDate(2024, 2, 10), account.ID)
	require.NoError(t, err)

	_, err = ledger.PayInvoice(ctx, invoices[0].ID, core.NewDate(2024, 2, 11), account.ID)
	assert.ErrorIs(t, err, core.ErrInvoiceAlreadyPaid)

	// Exactly one payment transaction was recorded.
	all, err := store.ListTransactions(ctx, services.TransactionFilter{BankOnly: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsInvoicePayment)
}

func TestPayInvoiceRequiresPayableAmount(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	account := newAccount(t, store)
	ctx := context.Background()

	// Invoice with no linked transactions has nothing to pay.
	inv, err := ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 10))
	require.NoError(t, err)

	_, err = ledger.PayInvoice(ctx, inv.ID, core.NewDate(2024, 2, 10), account.ID)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestPayInvoiceUnknownInvoice(t *testing.T) {
	ledger, store := newLedger(t)
	account := newAccount(t, store)

	_, err := ledger.PayInvoice(context.Background(), 999, core.NewDate(2024, 2, 10), account.ID)
	assert.ErrorIs(t, err, core.ErrInvoiceNotFound)
}
