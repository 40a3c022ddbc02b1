package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage/memory"
)

func runCommand(t *testing.T, ledger *services.Ledger, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func() (*services.Ledger, func(), error) {
		return ledger, func() {}, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAccountAddAndList(t *testing.T) {
	ledger := services.NewLedger(memory.New(), nil, core.PaidByPaymentDate)

	out, err := runCommand(t, ledger, "account", "add", "Checking", "--balance", "1500.00")
	require.NoError(t, err)
	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "1500.00")

	out, err = runCommand(t, ledger, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Checking")
}

func TestTxAddWithInstallments(t *testing.T) {
	ledger := services.NewLedger(memory.New(), nil, core.PaidByPaymentDate)

	_, err := runCommand(t, ledger, "card", "add", "Main Card",
		"--limit", "5000.00", "--due-day", "10", "--closing-day", "25")
	require.NoError(t, err)

	out, err := runCommand(t, ledger, "tx", "add", "tv",
		"--amount", "100.00", "--date", "2024-01-15", "--card", "1", "--installments", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "tv (1/3)")
	assert.Contains(t, out, "tv (3/3)")
	assert.Contains(t, out, "33.33")
}

func TestInvoicePayAndSummary(t *testing.T) {
	ledger := services.NewLedger(memory.New(), nil, core.PaidByPaymentDate)

	_, err := runCommand(t, ledger, "account", "add", "Checking")
	require.NoError(t, err)
	_, err = runCommand(t, ledger, "card", "add", "Main Card",
		"--limit", "5000.00", "--due-day", "10", "--closing-day", "25")
	require.NoError(t, err)
	_, err = runCommand(t, ledger, "tx", "add", "groceries",
		"--amount", "50.00", "--date", "2024-01-10", "--card", "1")
	require.NoError(t, err)

	out, err := runCommand(t, ledger, "invoice", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "due 2024-02-10")
	assert.Contains(t, out, "open")

	out, err = runCommand(t, ledger, "invoice", "pay", "1",
		"--account", "1", "--date", "2024-02-10")
	require.NoError(t, err)
	assert.Contains(t, out, "50.00")

	// Paying again must fail.
	_, err = runCommand(t, ledger, "invoice", "pay", "1",
		"--account", "1", "--date", "2024-02-11")
	assert.ErrorIs(t, err, core.ErrInvoiceAlreadyPaid)

	out, err = runCommand(t, ledger, "summary", "--year", "2024", "--month", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "expense            50.00")
}
