package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// InstallmentRequest is one user intent to split a purchase into
// monthly installments of (approximately) equal amount.
type InstallmentRequest struct {
	Description   string
	Total         core.Money
	Count         int
	StartDate     core.Date
	Type          core.TransactionType
	CategoryID    *int64
	BankAccountID *int64
	CreditCardID  *int64
}

// CreateInstallments expands the request into Count transactions on a
// monthly cadence and persists them as a single atomic batch.
//
// Installment i (0-indexed) is dated StartDate + i months, day of
// month clipped when the target month is shorter, and its description
// is suffixed with "(i+1/Count)". Each installment carries the
// half-up rounded share of the total; rounding drift is not
// reconciled against the total. Credit-card installments are resolved
// individually, so a split can span several invoices. If any insert
// fails the whole batch is rolled back and no installments remain.
func (l *Ledger) CreateInstallments(ctx context.Context, req InstallmentRequest) ([]core.Transaction, error) {
	if req.Count < 2 {
		return nil, core.ErrInvalidInstallments
	}

	share := core.Money{Cents: core.SplitInstallment(req.Total.Cents, req.Count)}

	var card core.CreditCard
	if req.CreditCardID != nil {
		var err error
		card, err = l.store.GetCreditCard(ctx, *req.CreditCardID)
		if err != nil {
			return nil, fmt.Errorf("load credit card: %w", err)
		}
	}

	drafts := make([]core.Transaction, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		draft := core.Transaction{
			Description:   fmt.Sprintf("%s (%d/%d)", req.Description, i+1, req.Count),
			Amount:        share,
			Type:          req.Type,
			Date:          core.AddMonths(req.StartDate, i),
			CategoryID:    req.CategoryID,
			BankAccountID: req.BankAccountID,
			CreditCardID:  req.CreditCardID,
		}
		if err := draft.Validate(); err != nil {
			return nil, fmt.Errorf("installment %d: %w", i+1, err)
		}
		if req.CreditCardID != nil {
			inv, err := l.ResolveInvoice(ctx, card, draft.Date)
			if err != nil {
				return nil, fmt.Errorf("installment %d: %w", i+1, err)
			}
			id := inv.ID
			draft.InvoiceID = &id
		}
		drafts = append(drafts, draft)
	}

	created, err := l.store.CreateTransactions(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("persist installments: %w", err)
	}

	slog.InfoContext(ctx, "Installment purchase recorded",
		"description", req.Description,
		"installments", req.Count,
		"total_cents", req.Total.Cents,
		"share_cents", share.Cents,
		"start_date", req.StartDate.String())

	for _, tx := range created {
		l.publishTransactionCreated(ctx, tx.ID)
	}
	return created, nil
}
