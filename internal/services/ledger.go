package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// Ledger orchestrates ledger writes and reads over the Store port.
type Ledger struct {
	store     Store
	events    EventPublisher
	paidBasis core.PaidBasis
}

// NewLedger creates the ledger service. publisher may be nil when no
// event transport is configured. basis defaults to
// core.PaidByPaymentDate.
func NewLedger(store Store, publisher EventPublisher, basis core.PaidBasis) *Ledger {
	if basis == "" {
		basis = core.PaidByPaymentDate
	}
	return &Ledger{
		store:     store,
		events:    publisher,
		paidBasis: basis,
	}
}

// CreateTransaction validates and persists a single transaction.
// Credit-card transactions are routed through the billing-cycle
// resolver first, so the owning invoice exists before the row is
// written.
func (l *Ledger) CreateTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if draft.CreditCardID != nil {
		card, err := l.store.GetCreditCard(ctx, *draft.CreditCardID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("load credit card: %w", err)
		}
		inv, err := l.ResolveInvoice(ctx, card, draft.Date)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("resolve invoice: %w", err)
		}
		draft.InvoiceID = &inv.ID
	}

	tx, err := l.store.CreateTransaction(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"type", string(tx.Type),
		"account_kind", tx.AccountKind())

	l.publishTransactionCreated(ctx, tx.ID)
	return tx, nil
}

// DeleteTransaction removes a transaction. Its invoice, if any, is
// kept; invoice assignment is immutable and empty invoices are
// harmless to the aggregation.
func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (l *Ledger) Transaction(ctx context.Context, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, id)
}

func (l *Ledger) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx, f)
}

func (l *Ledger) Invoice(ctx context.Context, id int64) (core.Invoice, error) {
	return l.store.GetInvoice(ctx, id)
}

// InvoiceView is an invoice enriched with its derived start date and
// the sum of its linked transactions, for presentation.
type InvoiceView struct {
	core.Invoice
	StartDate core.Date
	Total     core.Money
}

// ListInvoices returns invoices (optionally filtered by card) with
// derived start dates and totals. cardID zero means all cards.
func (l *Ledger) ListInvoices(ctx context.Context, cardID int64) ([]InvoiceView, error) {
	invoices, err := l.store.ListInvoices(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		start, err := l.store.InvoiceStartDate(ctx, inv)
		if err != nil {
			return nil, fmt.Errorf("invoice %d start date: %w", inv.ID, err)
		}
		total, err := l.store.InvoiceTotal(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("invoice %d total: %w", inv.ID, err)
		}
		views = append(views, InvoiceView{Invoice: inv, StartDate: start, Total: total})
	}
	return views, nil
}

// Account, card and category passthroughs for the presentation layer.

func (l *Ledger) CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	if err := a.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	return l.store.CreateBankAccount(ctx, a)
}

func (l *Ledger) ListBankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	return l.store.ListBankAccounts(ctx)
}

func (l *Ledger) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	return l.store.CreateCreditCard(ctx, c)
}

func (l *Ledger) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	return l.store.ListCreditCards(ctx)
}

func (l *Ledger) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	return l.store.GetOrCreateCategory(ctx, name)
}

func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	return l.store.ListCategories(ctx)
}

func (l *Ledger) publishTransactionCreated(ctx context.Context, id int64) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishTransactionCreated(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", id, "error", err)
	}
}

func (l *Ledger) publishInvoicePaid(ctx context.Context, id int64) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishInvoicePaid(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invoice event", "id", id, "error", err)
	}
}
