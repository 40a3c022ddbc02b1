package services

import (
	"context"
	"fmt"
	"sort"

	"contas/internal/core"
)

// Summarize builds the monthly view of the ledger as a pure
// aggregation over a point-in-time snapshot of the store. It never
// locks: racing with concurrent writes yields an acceptably stale
// summary, not an error.
//
// The previous balance counts bank-account movements strictly before
// the month; credit-card rows never touch the running balance, they
// surface through their invoice instead. Paid invoices are counted in
// the month selected by the configured basis (payment date by
// default), unpaid invoices by due date and only in full mode, as
// predicted expense. Synthetic invoice-payment transactions are
// excluded from the regular bucket: their amount reaches the expense
// total through the matching invoice line, never twice.
func (l *Ledger) Summarize(ctx context.Context, year, month int, mode core.SummaryMode) (core.MonthlySummary, error) {
	if mode == "" {
		mode = core.SummaryFull
	}
	if err := mode.Validate(); err != nil {
		return core.MonthlySummary{}, err
	}
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, core.ErrInvalidDate
	}

	monthStart := core.NewDate(year, month, 1)

	prevIncome, prevExpense, err := l.store.SumBankMovements(ctx, monthStart)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("previous balance: %w", err)
	}

	summary := core.MonthlySummary{
		Year:            year,
		Month:           month,
		PreviousBalance: prevIncome.Sub(prevExpense),
	}

	regular, err := l.store.ListTransactions(ctx, TransactionFilter{
		Year:            year,
		Month:           month,
		BankOnly:        true,
		ExcludePayments: true,
	})
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("list month transactions: %w", err)
	}

	for _, tx := range regular {
		switch tx.Type {
		case core.Income:
			summary.Income = summary.Income.Add(tx.Amount)
		case core.Expense:
			summary.Expense = summary.Expense.Add(tx.Amount)
		}
		summary.Items = append(summary.Items, core.SummaryItem{
			Origin:      core.OriginTransaction,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        tx.Type,
			RefID:       tx.ID,
		})
	}

	cardNames := map[int64]string{}
	cardName := func(id int64) string {
		if name, ok := cardNames[id]; ok {
			return name
		}
		card, err := l.store.GetCreditCard(ctx, id)
		if err != nil {
			cardNames[id] = "credit card"
			return cardNames[id]
		}
		cardNames[id] = card.Name
		return card.Name
	}

	paid, err := l.store.ListPaidInvoices(ctx, year, month, l.paidBasis)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("list paid invoices: %w", err)
	}
	for _, inv := range paid {
		total, err := l.store.InvoiceTotal(ctx, inv.ID)
		if err != nil {
			return core.MonthlySummary{}, fmt.Errorf("invoice %d total: %w", inv.ID, err)
		}
		if total.Cents == 0 {
			continue
		}
		itemDate := inv.DueDate
		if l.paidBasis == core.PaidByPaymentDate && inv.PaymentDate != nil {
			itemDate = *inv.PaymentDate
		}
		summary.Expense = summary.Expense.Add(total)
		summary.Items = append(summary.Items, core.SummaryItem{
			Origin:      core.OriginInvoice,
			Date:        itemDate,
			Description: fmt.Sprintf("%s invoice (closed %s)", cardName(inv.CreditCardID), inv.EndDate),
			Amount:      total,
			Type:        core.Expense,
			RefID:       inv.ID,
		})
	}

	summary.PredictedExpense = summary.Expense

	if mode == core.SummaryFull {
		unpaid, err := l.store.ListUnpaidInvoicesDue(ctx, year, month)
		if err != nil {
			return core.MonthlySummary{}, fmt.Errorf("list unpaid invoices: %w", err)
		}
		for _, inv := range unpaid {
			total, err := l.store.InvoiceTotal(ctx, inv.ID)
			if err != nil {
				return core.MonthlySummary{}, fmt.Errorf("invoice %d total: %w", inv.ID, err)
			}
			if total.Cents == 0 {
				continue
			}
			summary.PredictedExpense = summary.PredictedExpense.Add(total)
			summary.Items = append(summary.Items, core.SummaryItem{
				Origin:      core.OriginInvoice,
				Date:        inv.DueDate,
				Description: fmt.Sprintf("%s invoice (closed %s)", cardName(inv.CreditCardID), inv.EndDate),
				Amount:      total,
				Type:        core.Expense,
				Predicted:   true,
				RefID:       inv.ID,
			})
		}
	}

	summary.ClosingBalance = summary.PreviousBalance.Add(summary.Income).Sub(summary.Expense)
	summary.PredictedClosingBalance = summary.PreviousBalance.Add(summary.Income).Sub(summary.PredictedExpense)

	// Newest first; the stable sort keeps creation order within a day.
	sort.SliceStable(summary.Items, func(i, j int) bool {
		return summary.Items[i].Date.After(summary.Items[j].Date)
	})

	return summary, nil
}
