package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// ResolveInvoice maps a credit-card purchase date to its owning
// invoice and resolves it against the store, creating the invoice on
// first use.
//
// The operation is idempotent: any two purchase dates falling in the
// same billing cycle resolve to the identical invoice row. Uniqueness
// of (card, end date) is enforced by the store's upsert, so a
// concurrent resolver for the same new cycle observes the row created
// by the winner instead of duplicating it. The due date is computed
// only for the insert and never overwrites an existing invoice.
func (l *Ledger) ResolveInvoice(ctx context.Context, card core.CreditCard, txDate core.Date) (core.Invoice, error) {
	if err := card.Validate(); err != nil {
		return core.Invoice{}, fmt.Errorf("invalid card configuration: %w", err)
	}
	if err := txDate.Validate(); err != nil {
		return core.Invoice{}, err
	}

	endDate := core.CycleEndDate(card.ClosingDay, txDate)
	dueDate := core.CycleDueDate(card.ClosingDay, card.DueDay, endDate)

	inv, created, err := l.store.GetOrCreateInvoice(ctx, card.ID, endDate, dueDate)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get or create invoice: %w", err)
	}

	if created {
		slog.InfoContext(ctx, "Invoice opened",
			"invoice_id", inv.ID,
			"card", card.Name,
			"end_date", endDate.String(),
			"due_date", dueDate.String())
	}

	return inv, nil
}
