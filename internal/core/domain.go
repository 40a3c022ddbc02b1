package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// PaymentCategoryName is the reserved category for synthetic
// invoice-payment transactions. The store creates it lazily on first
// use and looks it up by name.
const PaymentCategoryName = "Invoice Payment"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID   int64
		Name string
	}

	// BankAccount holds a checking or savings account. Balance is
	// informational only and is never recomputed from transactions.
	BankAccount struct {
		ID      int64
		Name    string
		Balance Money
	}

	// CreditCard holds a card and its billing-cycle configuration.
	// ClosingDay is the day of month the statement period ends,
	// DueDay the day of month its payment is due.
	CreditCard struct {
		ID         int64
		Name       string
		Limit      Money
		DueDay     int
		ClosingDay int
	}

	// Invoice groups the credit-card transactions of one billing
	// cycle. At most one invoice exists per (CreditCardID, EndDate);
	// that pair is the idempotency key for invoice creation.
	Invoice struct {
		ID           int64
		CreditCardID int64
		EndDate      Date
		DueDate      Date
		IsPaid       bool
		PaymentDate  *Date
	}

	// Transaction records a single income or expense. Exactly one of
	// BankAccountID and CreditCardID must be set. InvoiceID is
	// assigned by the billing-cycle resolver for credit-card
	// transactions, never by callers directly.
	Transaction struct {
		ID               int64
		Description      string
		Amount           Money
		Type             TransactionType
		Date             Date
		CategoryID       *int64
		BankAccountID    *int64
		CreditCardID     *int64
		InvoiceID        *int64
		IsInvoicePayment bool
	}
)

var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrEmptyDescription        = errors.New("empty description")
	ErrInvalidType             = errors.New("invalid transaction type")
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidCycleDay         = errors.New("cycle day must be between 1 and 31")
	ErrInvalidAccountSelection = errors.New("transaction must reference exactly one of bank account or credit card")
	ErrInvalidInstallments     = errors.New("installment purchases need at least 2 installments")
	ErrInvoiceAlreadyPaid      = errors.New("invoice is already paid")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrAccountNotFound         = errors.New("account not found")
	ErrCategoryNotFound        = errors.New("category not found")
)

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (a BankAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("empty account name")
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty card name")
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidCycleDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidCycleDay
	}
	if err := c.Limit.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks a transaction draft before persistence. The
// exactly-one-account rule is the hard invariant: a transaction
// belongs to a bank account or to a credit card, never both and
// never neither.
func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 255 {
		return errors.New("description too long (max 255 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if (t.BankAccountID == nil) == (t.CreditCardID == nil) {
		return ErrInvalidAccountSelection
	}
	return nil
}

// AccountKind reports which account variant the transaction is
// attached to, for logging.
func (t Transaction) AccountKind() string {
	switch {
	case t.BankAccountID != nil:
		return "bank_account"
	case t.CreditCardID != nil:
		return "credit_card"
	}
	return "none"
}
