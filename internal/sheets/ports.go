package sheets

import (
	"context"

	"bankpoke/internal/core"
)

// Ports for outbound adapters.
type (
	// ReviewWriter appends records flagged for manual review to an
	// external review surface. It returns the number of rows written.
	ReviewWriter interface {
		AppendReviewRows(ctx context.Context, batchID string, rows []core.Transaction) (int, error)
	}
)
