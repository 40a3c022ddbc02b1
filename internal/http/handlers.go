package http

import (
	"fmt"
	"net/http"
	"strconv"

	"contas/internal/core"
	"contas/internal/services"
)

// Amounts cross the API as decimal strings ("120.50"); cents never
// leak to clients.

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name})
}

type accountResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListBankAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountResponse{ID: a.ID, Name: a.Name, Balance: a.Balance.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Balance string `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	account := core.BankAccount{Name: req.Name}
	if req.Balance != "" {
		balance, err := core.ParseDecimal(req.Balance)
		if err != nil {
			writeError(w, r, err)
			return
		}
		account.Balance = balance
	}

	created, err := s.ledger.CreateBankAccount(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountResponse{ID: created.ID, Name: created.Name, Balance: created.Balance.String()})
}

type cardResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Limit      string `json:"limit"`
	DueDay     int    `json:"due_day"`
	ClosingDay int    `json:"closing_day"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.ledger.ListCreditCards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{
			ID: c.ID, Name: c.Name, Limit: c.Limit.String(),
			DueDay: c.DueDay, ClosingDay: c.ClosingDay,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Limit      string `json:"limit"`
		DueDay     int    `json:"due_day"`
		ClosingDay int    `json:"closing_day"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	limit, err := core.ParseDecimal(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.ledger.CreateCreditCard(r.Context(), core.CreditCard{
		Name:       req.Name,
		Limit:      limit,
		DueDay:     req.DueDay,
		ClosingDay: req.ClosingDay,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cardResponse{
		ID: created.ID, Name: created.Name, Limit: created.Limit.String(),
		DueDay: created.DueDay, ClosingDay: created.ClosingDay,
	})
}

type transactionResponse struct {
	ID               int64  `json:"id"`
	Description      string `json:"description"`
	Amount           string `json:"amount"`
	Type             string `json:"type"`
	Date             string `json:"date"`
	CategoryID       *int64 `json:"category_id,omitempty"`
	BankAccountID    *int64 `json:"bank_account_id,omitempty"`
	CreditCardID     *int64 `json:"credit_card_id,omitempty"`
	InvoiceID        *int64 `json:"invoice_id,omitempty"`
	IsInvoicePayment bool   `json:"is_invoice_payment,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:               t.ID,
		Description:      t.Description,
		Amount:           t.Amount.String(),
		Type:             string(t.Type),
		Date:             t.Date.String(),
		CategoryID:       t.CategoryID,
		BankAccountID:    t.BankAccountID,
		CreditCardID:     t.CreditCardID,
		InvoiceID:        t.InvoiceID,
		IsInvoicePayment: t.IsInvoicePayment,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	transactions, err := s.ledger.ListTransactions(r.Context(), services.TransactionFilter{
		Year:  year,
		Month: month,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type createTransactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	Category      string `json:"category,omitempty"`
	BankAccountID *int64 `json:"bank_account_id,omitempty"`
	CreditCardID  *int64 `json:"credit_card_id,omitempty"`
	// Installments > 1 splits the amount into that many monthly
	// transactions starting at Date.
	Installments int `json:"installments,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	amount, err := core.ParseDecimal(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var categoryID *int64
	if req.Category != "" {
		category, err := s.ledger.CreateCategory(r.Context(), req.Category)
		if err != nil {
			writeError(w, r, err)
			return
		}
		categoryID = &category.ID
	}

	if req.Installments > 1 {
		created, err := s.ledger.CreateInstallments(r.Context(), services.InstallmentRequest{
			Description:   req.Description,
			Total:         amount,
			Count:         req.Installments,
			StartDate:     date,
			Type:          core.TransactionType(req.Type),
			CategoryID:    categoryID,
			BankAccountID: req.BankAccountID,
			CreditCardID:  req.CreditCardID,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Purge()
		out := make([]transactionResponse, 0, len(created))
		for _, t := range created {
			out = append(out, toTransactionResponse(t))
		}
		writeJSON(w, http.StatusCreated, out)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), core.Transaction{
		Description:   req.Description,
		Amount:        amount,
		Type:          core.TransactionType(req.Type),
		Date:          date,
		CategoryID:    categoryID,
		BankAccountID: req.BankAccountID,
		CreditCardID:  req.CreditCardID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

type invoiceResponse struct {
	ID           int64  `json:"id"`
	CreditCardID int64  `json:"credit_card_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DueDate      string `json:"due_date"`
	Total        string `json:"total"`
	IsPaid       bool   `json:"is_paid"`
	PaymentDate  string `json:"payment_date,omitempty"`
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	var cardID int64
	if v := r.URL.Query().Get("card_id"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid card_id"})
			return
		}
		cardID = parsed
	}

	views, err := s.ledger.ListInvoices(r.Context(), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]invoiceResponse, 0, len(views))
	for _, v := range views {
		resp := invoiceResponse{
			ID:           v.ID,
			CreditCardID: v.CreditCardID,
			StartDate:    v.StartDate.String(),
			EndDate:      v.EndDate.String(),
			DueDate:      v.DueDate.String(),
			Total:        v.Total.String(),
			IsPaid:       v.IsPaid,
		}
		if v.PaymentDate != nil {
			resp.PaymentDate = v.PaymentDate.String()
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid invoice id"})
		return
	}

	var req struct {
		BankAccountID int64  `json:"bank_account_id"`
		PaymentDate   string `json:"payment_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	paymentDate, err := core.ParseDate(req.PaymentDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := s.ledger.PayInvoice(r.Context(), id, paymentDate, req.BankAccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	writeJSON(w, http.StatusCreated, toTransactionResponse(payment))
}

type summaryItemResponse struct {
	Origin      string `json:"origin"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Predicted   bool   `json:"predicted,omitempty"`
	RefID       int64  `json:"ref_id"`
}

type summaryResponse struct {
	Year                    int                   `json:"year"`
	Month                   int                   `json:"month"`
	PreviousBalance         string                `json:"previous_balance"`
	Income                  string                `json:"income"`
	Expense                 string                `json:"expense"`
	PredictedExpense        string                `json:"predicted_expense"`
	ClosingBalance          string                `json:"closing_balance"`
	PredictedClosingBalance string                `json:"predicted_closing_balance"`
	Items                   []summaryItemResponse `json:"items"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	mode := core.SummaryMode(r.URL.Query().Get("mode"))

	key := fmt.Sprintf("%d-%02d-%s", year, month, mode)
	summary, cached := s.summaryCache.Get(key)
	if !cached {
		var err error
		summary, err = s.ledger.Summarize(r.Context(), year, month, mode)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Set(key, summary)
	}

	resp := summaryResponse{
		Year:                    summary.Year,
		Month:                   summary.Month,
		PreviousBalance:         summary.PreviousBalance.String(),
		Income:                  summary.Income.String(),
		Expense:                 summary.Expense.String(),
		PredictedExpense:        summary.PredictedExpense.String(),
		ClosingBalance:          summary.ClosingBalance.String(),
		PredictedClosingBalance: summary.PredictedClosingBalance.String(),
		Items:                   make([]summaryItemResponse, 0, len(summary.Items)),
	}
	for _, item := range summary.Items {
		resp.Items = append(resp.Items, summaryItemResponse{
			Origin:      string(item.Origin),
			Date:        item.Date.String(),
			Description: item.Description,
			Amount:      item.Amount.String(),
			Type:        string(item.Type),
			Predicted:   item.Predicted,
			RefID:       item.RefID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
