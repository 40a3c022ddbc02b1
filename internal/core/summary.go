package core

import "errors"

const (
	OriginTransaction ItemOrigin = "transaction"
	OriginInvoice     ItemOrigin = "invoice"
)

const (
	// SummaryRealized reports realized movements only.
	SummaryRealized SummaryMode = "realized"
	// SummaryFull adds unpaid invoices due in the month as predicted
	// expense.
	SummaryFull SummaryMode = "full"
)

const (
	// PaidByPaymentDate counts a paid invoice in the month it was paid.
	PaidByPaymentDate PaidBasis = "payment_date"
	// PaidByDueDate counts a paid invoice in the month it was due.
	PaidByDueDate PaidBasis = "due_date"
)

var (
	ErrInvalidSummaryMode = errors.New("invalid summary mode")
	ErrInvalidPaidBasis   = errors.New("invalid paid-invoice basis")
)

type (
	ItemOrigin  string
	SummaryMode string
	PaidBasis   string

	// SummaryItem is one line of a monthly view: either a bank
	// transaction or an invoice entry, tagged with its origin and
	// whether it is a realized or predicted movement.
	SummaryItem struct {
		Origin      ItemOrigin
		Date        Date
		Description string
		Amount      Money
		Type        TransactionType
		Predicted   bool
		// ID of the underlying transaction or invoice.
		RefID int64
	}

	// MonthlySummary is the aggregated view of one calendar month.
	// Balances are signed; PreviousBalance + Income - Expense ==
	// ClosingBalance always holds, and likewise for the predicted
	// pair.
	MonthlySummary struct {
		Year                    int
		Month                   int
		PreviousBalance         Money
		Income                  Money
		Expense                 Money
		PredictedExpense        Money
		ClosingBalance          Money
		PredictedClosingBalance Money
		Items                   []SummaryItem
	}
)

func (m SummaryMode) Validate() error {
	switch m {
	case SummaryRealized, SummaryFull:
		return nil
	}
	return ErrInvalidSummaryMode
}

func (b PaidBasis) Validate() error {
	switch b {
	case PaidByPaymentDate, PaidByDueDate:
		return nil
	}
	return ErrInvalidPaidBasis
}
