// Package export defines the outbound port for publishing monthly
// summaries to external sinks.
package export

import (
	"context"

	"contas/internal/core"
)

// SummaryWriter persists a monthly summary outside the ledger. The
// worker overwrites the month's row on every export, so writers must
// treat (year, month) as the row key.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, s core.MonthlySummary) (rowRef string, err error)
}
