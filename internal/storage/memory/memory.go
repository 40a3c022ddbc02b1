// Package memory provides an in-memory ledger store. It backs the
// memory data backend and the service-level tests; semantics mirror
// the SQLite repository, including upsert idempotency and atomic
// batches.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"contas/internal/core"
	"contas/internal/services"
)

type Store struct {
	mu           sync.Mutex
	categories   []core.Category
	bankAccounts []core.BankAccount
	creditCards  []core.CreditCard
	invoices     []core.Invoice
	transactions []core.Transaction
	nextID       map[string]int64
}

var _ services.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: map[string]int64{}}
}

func (s *Store) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *Store) GetOrCreateCategory(_ context.Context, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrCategoryNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	c := core.Category{ID: s.id("category"), Name: name}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) CreateBankAccount(_ context.Context, a core.BankAccount) (core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id("bank_account")
	s.bankAccounts = append(s.bankAccounts, a)
	return a, nil
}

func (s *Store) GetBankAccount(_ context.Context, id int64) (core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.bankAccounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.BankAccount{}, core.ErrAccountNotFound
}

func (s *Store) ListBankAccounts(_ context.Context) ([]core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BankAccount(nil), s.bankAccounts...), nil
}

func (s *Store) CreateCreditCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id("credit_card")
	s.creditCards = append(s.creditCards, c)
	return c, nil
}

func (s *Store) GetCreditCard(_ context.Context, id int64) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.creditCards {
		if c.ID == id {
			return c, nil
		}
	}
	return core.CreditCard{}, core.ErrAccountNotFound
}

func (s *Store) ListCreditCards(_ context.Context) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CreditCard(nil), s.creditCards...), nil
}

// GetOrCreateInvoice upserts on the (card, end date) identity under
// the store lock, so concurrent resolvers in the same cycle observe a
// single invoice. An existing invoice's due date is left untouched.
func (s *Store) GetOrCreateInvoice(_ context.Context, cardID int64, endDate, dueDate core.Date) (core.Invoice, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.CreditCardID == cardID && inv.EndDate.Equal(endDate) {
			return inv, false, nil
		}
	}
	inv := core.Invoice{
		ID:           s.id("invoice"),
		CreditCardID: cardID,
		EndDate:      endDate,
		DueDate:      dueDate,
	}
	s.invoices = append(s.invoices, inv)
	return inv, true, nil
}

func (s *Store) FindInvoice(_ context.Context, cardID int64, endDate core.Date) (*core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.CreditCardID == cardID && inv.EndDate.Equal(endDate) {
			found := inv
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) GetInvoice(_ context.Context, id int64) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return core.Invoice{}, core.ErrInvoiceNotFound
}

func (s *Store) ListInvoices(_ context.Context, cardID int64) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Invoice
	for _, inv := range s.invoices {
		if cardID == 0 || inv.CreditCardID == cardID {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndDate.After(out[j].EndDate)
	})
	return out, nil
}

func (s *Store) InvoiceTotal(_ context.Context, invoiceID int64) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, tx := range s.transactions {
		if tx.InvoiceID != nil && *tx.InvoiceID == invoiceID {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// InvoiceStartDate derives the period start: the day after the
// previous invoice's end date, or end date minus 29 days for the
// card's first invoice.
func (s *Store) InvoiceStartDate(_ context.Context, inv core.Invoice) (core.Date, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *core.Invoice
	for i := range s.invoices {
		cand := s.invoices[i]
		if cand.CreditCardID != inv.CreditCardID || !cand.EndDate.Before(inv.EndDate) {
			continue
		}
		if prev == nil || cand.EndDate.After(prev.EndDate) {
			prev = &s.invoices[i]
		}
	}
	if prev != nil {
		return prev.EndDate.AddDays(1), nil
	}
	return inv.EndDate.AddDays(-29), nil
}

func (s *Store) ListUnpaidInvoicesDue(_ context.Context, year, month int) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Invoice
	for _, inv := range s.invoices {
		if !inv.IsPaid && inv.DueDate.Year() == year && inv.DueDate.Month() == month {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *Store) ListPaidInvoices(_ context.Context, year, month int, basis core.PaidBasis) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Invoice
	for _, inv := range s.invoices {
		if !inv.IsPaid {
			continue
		}
		key := inv.DueDate
		if basis == core.PaidByPaymentDate {
			if inv.PaymentDate == nil {
				continue
			}
			key = *inv.PaymentDate
		}
		if key.Year() == year && key.Month() == month {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id("transaction")
	s.transactions = append(s.transactions, t)
	return t, nil
}

// CreateTransactions is all-or-nothing: every draft is validated
// before any row is appended.
func (s *Store) CreateTransactions(_ context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		t.ID = s.id("transaction")
		s.transactions = append(s.transactions, t)
		created = append(created, t)
	}
	return created, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (s *Store) ListTransactions(_ context.Context, f services.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if f.Year != 0 && (t.Date.Year() != f.Year || t.Date.Month() != f.Month) {
			continue
		}
		if f.BankOnly && t.BankAccountID == nil {
			continue
		}
		if f.ExcludePayments && t.IsInvoicePayment {
			continue
		}
		out = append(out, t)
	}
	// Date descending, creation order within a day.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) SumBankMovements(_ context.Context, before core.Date) (core.Money, core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var income, expense core.Money
	for _, t := range s.transactions {
		if t.BankAccountID == nil || !t.Date.Before(before) {
			continue
		}
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense, nil
}

// PayInvoice marks the invoice paid and appends the synthetic payment
// transaction as one step under the store lock.
func (s *Store) PayInvoice(_ context.Context, invoiceID int64, paymentDate core.Date, payment core.Transaction) (core.Transaction, error) {
	if err := payment.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID != invoiceID {
			continue
		}
		if s.invoices[i].IsPaid {
			return core.Transaction{}, core.ErrInvoiceAlreadyPaid
		}
		s.invoices[i].IsPaid = true
		d := paymentDate
		s.invoices[i].PaymentDate = &d
		payment.ID = s.id("transaction")
		s.transactions = append(s.transactions, payment)
		return payment, nil
	}
	return core.Transaction{}, core.ErrInvoiceNotFound
}
