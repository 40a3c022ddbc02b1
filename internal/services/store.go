// Package services implements the billing-cycle and ledger
// aggregation engine on top of a Store port: invoice resolution,
// installment expansion, invoice payment, and monthly summaries.
package services

import (
	"context"

	"contas/internal/core"
)

// TransactionFilter narrows ListTransactions. A zero Year/Month means
// no month filter. Results are ordered by date descending, ties by
// creation order.
type TransactionFilter struct {
	Year            int
	Month           int
	BankOnly        bool
	ExcludePayments bool
}

// Store is the ledger store port. The SQLite repository is the
// durable implementation; the memory store backs tests and the
// in-memory backend.
type Store interface {
	// Categories.
	GetOrCreateCategory(ctx context.Context, name string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)

	// Accounts.
	CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error)
	GetBankAccount(ctx context.Context, id int64) (core.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]core.BankAccount, error)
	CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
	GetCreditCard(ctx context.Context, id int64) (core.CreditCard, error)
	ListCreditCards(ctx context.Context) ([]core.CreditCard, error)

	// Invoices. GetOrCreateInvoice is atomic with respect to the
	// (credit card, end date) uniqueness constraint: concurrent
	// callers for the same new cycle observe a single invoice. The
	// due date of an existing invoice is never overwritten.
	GetOrCreateInvoice(ctx context.Context, cardID int64, endDate, dueDate core.Date) (inv core.Invoice, created bool, err error)
	FindInvoice(ctx context.Context, cardID int64, endDate core.Date) (*core.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (core.Invoice, error)
	ListInvoices(ctx context.Context, cardID int64) ([]core.Invoice, error)
	InvoiceTotal(ctx context.Context, invoiceID int64) (core.Money, error)
	InvoiceStartDate(ctx context.Context, inv core.Invoice) (core.Date, error)
	ListUnpaidInvoicesDue(ctx context.Context, year, month int) ([]core.Invoice, error)
	ListPaidInvoices(ctx context.Context, year, month int, basis core.PaidBasis) ([]core.Invoice, error)

	// Transactions. CreateTransactions persists a batch in a single
	// store transaction; a failed batch leaves no rows behind.
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	CreateTransactions(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
	SumBankMovements(ctx context.Context, before core.Date) (income, expense core.Money, err error)

	// PayInvoice atomically marks the invoice paid and records the
	// synthetic payment transaction. A second payment attempt fails
	// with core.ErrInvoiceAlreadyPaid.
	PayInvoice(ctx context.Context, invoiceID int64, paymentDate core.Date, payment core.Transaction) (core.Transaction, error)
}

// EventPublisher notifies interested consumers about ledger writes.
// Publishing is best-effort; failures never affect the write path.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, transactionID int64) error
	PublishInvoicePaid(ctx context.Context, invoiceID int64) error
}
