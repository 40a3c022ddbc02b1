package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contas/internal/core"
	"contas/internal/events"
	exportmem "contas/internal/export/memory"
	"contas/internal/services"
	"contas/internal/storage/memory"
	"contas/internal/worker"
)

func newWorker(t *testing.T) (*worker.ExportWorker, *services.Ledger, *memory.Store, *exportmem.Writer) {
	t.Helper()
	store := memory.New()
	ledger := services.NewLedger(store, nil, core.PaidByPaymentDate)
	sink := exportmem.New()
	return worker.NewExportWorker(ledger, store, sink), ledger, store, sink
}

func TestHandleTransactionCreatedExportsMonth(t *testing.T) {
	w, ledger, store, sink := newWorker(t)
	ctx := context.Background()

	account, err := store.CreateBankAccount(ctx, core.BankAccount{Name: "Checking"})
	require.NoError(t, err)

	tx, err := ledger.CreateTransaction(ctx, core.Transaction{
		Description:   "salary",
		Amount:        core.Money{Cents: 100000},
		Type:          core.Income,
		Date:          core.NewDate(2024, 2, 5),
		BankAccountID: &account.ID,
	})
	require.NoError(t, err)

	err = w.HandleEvent(ctx, events.NewLedgerEvent(events.KindTransactionCreated, tx.ID))
	require.NoError(t, err)

	rows := sink.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, 2, rows[0].Month)
	assert.Equal(t, int64(100000), rows[0].Income.Cents)
}

func TestHandleInvoicePaidExportsDueAndPaymentMonths(t *testing.T) {
	w, ledger, store, sink := newWorker(t)
	ctx := context.Background()

	account, err := store.CreateBankAccount(ctx, core.BankAccount{Name: "Checking"})
	require.NoError(t, err)
	card, err := store.CreateCreditCard(ctx, core.CreditCard{
		Name:       "Main Card",
		Limit:      core.Money{Cents: 500000},
		DueDay:     10,
		ClosingDay: 25,
	})
	require.NoError(t, err)

	_, err = ledger.CreateTransaction(ctx, core.Transaction{
		Description:  "groceries",
		Amount:       core.Money{Cents: 20000},
		Type:         core.Expense,
		Date:         core.NewDate(2024, 1, 20),
		CreditCardID: &card.ID,
	})
	require.NoError(t, err)

	invoices, err := store.ListInvoices(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	// Invoice due 2024-02-10 paid a month late.
	_, err = ledger.PayInvoice(ctx, invoices[0].ID, core.NewDate(2024, 3, 5), account.ID)
	require.NoError(t, err)

	err = w.HandleEvent(ctx, events.NewLedgerEvent(events.KindInvoicePaid, invoices[0].ID))
	require.NoError(t, err)

	rows := sink.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Month)
	assert.Equal(t, 3, rows[1].Month)
	// Under the payment-date basis the invoice lands in March.
	assert.Equal(t, int64(0), rows[0].Expense.Cents)
	assert.Equal(t, int64(20000), rows[1].Expense.Cents)
}

func TestHandleEventUnknownKindIsDropped(t *testing.T) {
	w, _, _, sink := newWorker(t)

	err := w.HandleEvent(context.Background(), events.NewLedgerEvent("invoice.reopened", 1))
	require.NoError(t, err)
	assert.Empty(t, sink.Rows())
}

func TestExportCurrentMonth(t *testing.T) {
	w, _, _, sink := newWorker(t)

	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, w.ExportCurrentMonth(context.Background(), now))

	rows := sink.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, 6, rows[0].Month)
}
