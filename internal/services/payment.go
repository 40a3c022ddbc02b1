package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// PayInvoice settles an unpaid invoice from a bank account.
//
// The invoice total is the sum of its linked transactions, not the
// card limit. Payment records one synthetic expense transaction
// against the bank account, categorized under the reserved
// invoice-payment category and flagged so the aggregator never counts
// it as a second ordinary expense next to the invoice line. Paid is
// terminal: a second attempt fails with core.ErrInvoiceAlreadyPaid.
func (l *Ledger) PayInvoice(ctx context.Context, invoiceID int64, paymentDate core.Date, bankAccountID int64) (core.Transaction, error) {
	if err := paymentDate.Validate(); err != nil {
		return core.Transaction{}, err
	}

	inv, err := l.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load invoice: %w", err)
	}
	if inv.IsPaid {
		return core.Transaction{}, core.ErrInvoiceAlreadyPaid
	}

	account, err := l.store.GetBankAccount(ctx, bankAccountID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load bank account: %w", err)
	}
	card, err := l.store.GetCreditCard(ctx, inv.CreditCardID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load credit card: %w", err)
	}

	total, err := l.store.InvoiceTotal(ctx, inv.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invoice total: %w", err)
	}
	if err := total.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("invoice %d has no payable amount: %w", inv.ID, err)
	}

	category, err := l.store.GetOrCreateCategory(ctx, core.PaymentCategoryName)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("payment category: %w", err)
	}

	draft := core.Transaction{
		Description:      fmt.Sprintf("Invoice payment %s (due %s)", card.Name, inv.DueDate),
		Amount:           total,
		Type:             core.Expense,
		Date:             paymentDate,
		CategoryID:       &category.ID,
		BankAccountID:    &account.ID,
		IsInvoicePayment: true,
	}

	payment, err := l.store.PayInvoice(ctx, inv.ID, paymentDate, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("pay invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice paid",
		"invoice_id", inv.ID,
		"card", card.Name,
		"account", account.Name,
		"amount_cents", total.Cents,
		"payment_date", paymentDate.String())

	l.publishInvoicePaid(ctx, inv.ID)
	return payment, nil
}
