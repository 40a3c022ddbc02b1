package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"contas/internal/core"
	"contas/internal/services"
)

func newAccountCommand(openLedger func() (*services.Ledger, func(), error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank accounts",
	}

	var balance string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, args []string) error {
			account := core.BankAccount{Name: args[0]}
			if balance != "" {
				b, err := core.ParseDecimal(balance)
				if err != nil {
					return fmt.Errorf("parse balance: %w", err)
				}
				account.Balance = b
			}
			created, err := ledger.CreateBankAccount(cmd.Context(), account)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %d: %s (balance %s)\n", created.ID, created.Name, created.Balance)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&balance, "balance", "", "initial balance, e.g. 1500.00")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bank accounts",
		Args:  cobra.NoArgs,
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, _ []string) error {
			accounts, err := ledger.ListBankAccounts(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range accounts {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", a.ID, a.Name, a.Balance)
			}
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

func newCardCommand(openLedger func() (*services.Ledger, func(), error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage credit cards",
	}

	var limit string
	var dueDay, closingDay int
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a credit card",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, args []string) error {
			l, err := core.ParseDecimal(limit)
			if err != nil {
				return fmt.Errorf("parse limit: %w", err)
			}
			created, err := ledger.CreateCreditCard(cmd.Context(), core.CreditCard{
				Name:       args[0],
				Limit:      l,
				DueDay:     dueDay,
				ClosingDay: closingDay,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created card %d: %s (closes day %d, due day %d)\n",
				created.ID, created.Name, created.ClosingDay, created.DueDay)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&limit, "limit", "", "card limit, e.g. 5000.00 (required)")
	addCmd.Flags().IntVar(&dueDay, "due-day", 0, "day of month the invoice is due (required)")
	addCmd.Flags().IntVar(&closingDay, "closing-day", 0, "day of month the statement closes (required)")
	_ = addCmd.MarkFlagRequired("limit")
	_ = addCmd.MarkFlagRequired("due-day")
	_ = addCmd.MarkFlagRequired("closing-day")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List credit cards",
		Args:  cobra.NoArgs,
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, _ []string) error {
			cards, err := ledger.ListCreditCards(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range cards {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tlimit %s\tcloses %d\tdue %d\n",
					c.ID, c.Name, c.Limit, c.ClosingDay, c.DueDay)
			}
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

func newTxCommand(openLedger func() (*services.Ledger, func(), error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and list transactions",
	}

	var (
		amount       string
		txType       string
		date         string
		category     string
		accountID    int64
		cardID       int64
		installments int
	)
	addCmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, args []string) error {
			m, err := core.ParseDecimal(amount)
			if err != nil {
				return fmt.Errorf("parse amount: %w", err)
			}
			d, err := core.ParseDate(date)
			if err != nil {
				return fmt.Errorf("parse date: %w", err)
			}

			var categoryID *int64
			if category != "" {
				c, err := ledger.CreateCategory(cmd.Context(), category)
				if err != nil {
					return err
				}
				categoryID = &c.ID
			}
			var bankAccountID, creditCardID *int64
			if accountID != 0 {
				bankAccountID = &accountID
			}
			if cardID != 0 {
				creditCardID = &cardID
			}

			if installments > 1 {
				created, err := ledger.CreateInstallments(cmd.Context(), services.InstallmentRequest{
					Description:   args[0],
					Total:         m,
					Count:         installments,
					StartDate:     d,
					Type:          core.TransactionType(txType),
					CategoryID:    categoryID,
					BankAccountID: bankAccountID,
					CreditCardID:  creditCardID,
				})
				if err != nil {
					return err
				}
				for _, t := range created {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", t.ID, t.Date, t.Description, t.Amount)
				}
				return nil
			}

			created, err := ledger.CreateTransaction(cmd.Context(), core.Transaction{
				Description:   args[0],
				Amount:        m,
				Type:          core.TransactionType(txType),
				Date:          d,
				CategoryID:    categoryID,
				BankAccountID: bankAccountID,
				CreditCardID:  creditCardID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created transaction %d: %s %s on %s\n",
				created.ID, created.Description, created.Amount, created.Date)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 120.50 (required)")
	addCmd.Flags().StringVar(&txType, "type", string(core.Expense), "income or expense")
	addCmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&category, "category", "", "category name")
	addCmd.Flags().Int64Var(&accountID, "account", 0, "bank account id")
	addCmd.Flags().Int64Var(&cardID, "card", 0, "credit card id")
	addCmd.Flags().IntVar(&installments, "installments", 0, "split into N monthly installments")
	_ = addCmd.MarkFlagRequired("amount")

	var year, month int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a month's transactions",
		Args:  cobra.NoArgs,
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, _ []string) error {
			y, m := defaultYearMonth(year, month)
			transactions, err := ledger.ListTransactions(cmd.Context(), services.TransactionFilter{Year: y, Month: m})
			if err != nil {
				return err
			}
			for _, t := range transactions {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, t.Description, t.Amount)
			}
			return nil
		}),
	}
	listCmd.Flags().IntVar(&year, "year", 0, "year (defaults to current)")
	listCmd.Flags().IntVar(&month, "month", 0, "month (defaults to current)")

	var deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			if err := ledger.DeleteTransaction(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd, deleteCmd)
	return cmd
}

func newInvoiceCommand(openLedger func() (*services.Ledger, func(), error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "List and pay credit card invoices",
	}

	var cardID int64
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, _ []string) error {
			views, err := ledger.ListInvoices(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			for _, v := range views {
				status := "open"
				if v.IsPaid {
					status = "paid " + v.PaymentDate.String()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\tcard %d\t%s .. %s\tdue %s\t%s\t%s\n",
					v.ID, v.CreditCardID, v.StartDate, v.EndDate, v.DueDate, v.Total, status)
			}
			return nil
		}),
	}
	listCmd.Flags().Int64Var(&cardID, "card", 0, "filter by credit card id")

	var accountID int64
	var paymentDate string
	payCmd := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Pay an invoice from a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid invoice id %q", args[0])
			}
			d, err := core.ParseDate(paymentDate)
			if err != nil {
				return fmt.Errorf("parse payment date: %w", err)
			}
			payment, err := ledger.PayInvoice(cmd.Context(), id, d, accountID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paid invoice %d: %s (%s)\n", id, payment.Amount, payment.Description)
			return nil
		}),
	}
	payCmd.Flags().Int64Var(&accountID, "account", 0, "bank account to pay from (required)")
	payCmd.Flags().StringVar(&paymentDate, "date", time.Now().Format("2006-01-02"), "payment date (YYYY-MM-DD)")
	_ = payCmd.MarkFlagRequired("account")

	cmd.AddCommand(listCmd, payCmd)
	return cmd
}

func newSummaryCommand(openLedger func() (*services.Ledger, func(), error)) *cobra.Command {
	var year, month int
	var mode string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly summary",
		Args:  cobra.NoArgs,
		RunE: withLedger(openLedger, func(cmd *cobra.Command, ledger *services.Ledger, _ []string) error {
			y, m := defaultYearMonth(year, month)
			summary, err := ledger.Summarize(cmd.Context(), y, m, core.SummaryMode(mode))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Summary %d-%02d\n", summary.Year, summary.Month)
			fmt.Fprintf(out, "  previous balance   %s\n", summary.PreviousBalance)
			fmt.Fprintf(out, "  income             %s\n", summary.Income)
			fmt.Fprintf(out, "  expense            %s\n", summary.Expense)
			fmt.Fprintf(out, "  predicted expense  %s\n", summary.PredictedExpense)
			fmt.Fprintf(out, "  closing balance    %s\n", summary.ClosingBalance)
			fmt.Fprintf(out, "  predicted closing  %s\n", summary.PredictedClosingBalance)
			for _, item := range summary.Items {
				marker := " "
				if item.Predicted {
					marker = "~"
				}
				fmt.Fprintf(out, "  %s %s  %-8s %-40s %s\n", marker, item.Date, item.Type, item.Description, item.Amount)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (defaults to current)")
	cmd.Flags().IntVar(&month, "month", 0, "month (defaults to current)")
	cmd.Flags().StringVar(&mode, "mode", string(core.SummaryFull), "realized or full")

	return cmd
}

func defaultYearMonth(year, month int) (int, int) {
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month
}
