// Package worker re-exports monthly summaries when the ledger
// changes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/events"
	"contas/internal/export"
	"contas/internal/services"
)

// ExportWorker maps ledger events to the calendar months they touch,
// recomputes those months and pushes the summaries to the configured
// sink. Exports are idempotent, so a redelivered or duplicated event
// just rewrites the same row.
type ExportWorker struct {
	ledger *services.Ledger
	store  services.Store
	sink   export.SummaryWriter
	mode   core.SummaryMode
}

func NewExportWorker(ledger *services.Ledger, store services.Store, sink export.SummaryWriter) *ExportWorker {
	return &ExportWorker{
		ledger: ledger,
		store:  store,
		sink:   sink,
		mode:   core.SummaryFull,
	}
}

// HandleEvent processes a single ledger event from the queue.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *events.LedgerEvent) error {
	months, err := w.affectedMonths(ctx, event)
	if err != nil {
		return err
	}
	for _, m := range months {
		if err := w.exportMonth(ctx, m.year, m.month); err != nil {
			return err
		}
	}
	return nil
}

type yearMonth struct {
	year  int
	month int
}

// affectedMonths resolves which months an event invalidates. A new
// transaction touches its own month. A paid invoice touches the
// payment month and the due month, which differ when the invoice is
// paid early or late.
func (w *ExportWorker) affectedMonths(ctx context.Context, event *events.LedgerEvent) ([]yearMonth, error) {
	switch event.Kind {
	case events.KindTransactionCreated:
		t, err := w.store.GetTransaction(ctx, event.EntityID)
		if err != nil {
			return nil, fmt.Errorf("load transaction %d: %w", event.EntityID, err)
		}
		return []yearMonth{{t.Date.Year(), t.Date.Month()}}, nil

	case events.KindInvoicePaid:
		inv, err := w.store.GetInvoice(ctx, event.EntityID)
		if err != nil {
			return nil, fmt.Errorf("load invoice %d: %w", event.EntityID, err)
		}
		months := []yearMonth{{inv.DueDate.Year(), inv.DueDate.Month()}}
		if inv.PaymentDate != nil {
			paid := yearMonth{inv.PaymentDate.Year(), inv.PaymentDate.Month()}
			if paid != months[0] {
				months = append(months, paid)
			}
		}
		return months, nil
	}

	slog.WarnContext(ctx, "Ignoring event of unknown kind",
		"event_id", event.ID,
		"kind", event.Kind)
	return nil, nil
}

func (w *ExportWorker) exportMonth(ctx context.Context, year, month int) error {
	summary, err := w.ledger.Summarize(ctx, year, month, w.mode)
	if err != nil {
		return fmt.Errorf("summarize %d-%02d: %w", year, month, err)
	}

	ref, err := w.sink.WriteSummary(ctx, summary)
	if err != nil {
		return fmt.Errorf("write summary %d-%02d: %w", year, month, err)
	}

	slog.InfoContext(ctx, "Exported month",
		"year", year,
		"month", month,
		"ref", ref,
		"income_cents", summary.Income.Cents,
		"expense_cents", summary.Expense.Cents)
	return nil
}

// ExportCurrentMonth recomputes and exports the month containing now.
// The worker calls it on startup and on a timer as a backstop for
// lost queue messages.
func (w *ExportWorker) ExportCurrentMonth(ctx context.Context, now time.Time) error {
	return w.exportMonth(ctx, now.Year(), int(now.Month()))
}
