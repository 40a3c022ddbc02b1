package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage/memory"
)

func newLedger(t *testing.T) (*services.Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	return services.NewLedger(store, nil, ""), store
}

func newCard(t *testing.T, store *memory.Store, closingDay, dueDay int) core.CreditCard {
	t.Helper()
	card, err := store.CreateCreditCard(context.Background(), core.CreditCard{
		Name:       "Visa",
		Limit:      core.Money{Cents: 500000},
		DueDay:     dueDay,
		ClosingDay: closingDay,
	})
	require.NoError(t, err)
	return card
}

func newAccount(t *testing.T, store *memory.Store) core.BankAccount {
	t.Helper()
	account, err := store.CreateBankAccount(context.Background(), core.BankAccount{Name: "Checking"})
	require.NoError(t, err)
	return account
}

func TestResolveInvoiceComputesCycle(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	ctx := context.Background()

	// Purchase after the closing day rolls into the next statement.
	inv, err := ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 26))
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 2, 25), inv.EndDate)
	assert.Equal(t, core.NewDate(2024, 3, 10), inv.DueDate)
	assert.False(t, inv.IsPaid)

	// Purchase on or before the closing day stays in the current one.
	inv, err = ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 20))
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 1, 25), inv.EndDate)
	assert.Equal(t, core.NewDate(2024, 2, 10), inv.DueDate)
}

func TestResolveInvoiceIsIdempotent(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	ctx := context.Background()

	first, err := ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 2))
	require.NoError(t, err)
	second, err := ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 25))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "dates in the same cycle must share one invoice")

	invoices, err := store.ListInvoices(ctx, card.ID)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestResolveInvoiceAdjacentCyclesAreDistinct(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	ctx := context.Background()

	jan, err := ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 25))
	require.NoError(t, err)
	feb, err := ledger.ResolveInvoice(ctx, card, core.NewDate(2024, 1, 26))
	require.NoError(t, err)
	assert.NotEqual(t, jan.ID, feb.ID)

	invoices, err := store.ListInvoices(ctx, card.ID)
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
}

func TestCreateTransactionAssignsInvoice(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	ctx := context.Background()

	tx, err := ledger.CreateTransaction(ctx, core.Transaction{
		Description:  "online purchase",
		Amount:       core.Money{Cents: 9900},
		Type:         core.Expense,
		Date:         core.NewDate(2024, 1, 15),
		CreditCardID: &card.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, tx.InvoiceID)

	inv, err := store.GetInvoice(ctx, *tx.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 1, 25), inv.EndDate)

	// A second purchase in the same cycle lands on the same invoice.
	tx2, err := ledger.CreateTransaction(ctx, core.Transaction{
		Description:  "groceries",
		Amount:       core.Money{Cents: 4500},
		Type:         core.Expense,
		Date:         core.NewDate(2024, 1, 3),
		CreditCardID: &card.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, tx2.InvoiceID)
	assert.Equal(t, *tx.InvoiceID, *tx2.InvoiceID)
}

func TestCreateTransactionRejectsInvalidAccountSelection(t *testing.T) {
	ledger, store := newLedger(t)
	card := newCard(t, store, 25, 10)
	account := newAccount(t, store)
	ctx := context.Background()

	_, err := ledger.CreateTransaction(ctx, core.Transaction{
		Description:   "ambiguous",
		Amount:        core.Money{Cents: 100},
		Type:          core.Expense,
		Date:          core.NewDate(2024, 1, 15),
		BankAccountID: &account.ID,
		CreditCardID:  &card.ID,
	})
	assert.ErrorIs(t, err, core.ErrInvalidAccountSelection)

	_, err = ledger.CreateTransaction(ctx, core.Transaction{
		Description: "orphan",
		Amount:      core.Money{Cents: 100},
		Type:        core.Expense,
		Date:        core.NewDate(2024, 1, 15),
	})
	assert.ErrorIs(t, err, core.ErrInvalidAccountSelection)
}
