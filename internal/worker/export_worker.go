// Package worker exports review-flagged records to an external review
// surface after each import batch completes.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bankpoke/internal/amqp"
	"bankpoke/internal/core"
	"bankpoke/internal/sheets"
)

// ReviewLister loads a batch's records still flagged for review.
type ReviewLister interface {
	ReviewRequiredByBatch(ctx context.Context, batchID string) ([]core.Transaction, error)
}

// ExportWorker consumes batch completed messages and pushes the flagged
// rows to the review writer.
type ExportWorker struct {
	store  ReviewLister
	writer sheets.ReviewWriter
}

func NewExportWorker(store ReviewLister, writer sheets.ReviewWriter) *ExportWorker {
	return &ExportWorker{store: store, writer: writer}
}

// HandleBatchCompleted processes one batch completed message. Returning
// an error requeues the message.
func (w *ExportWorker) HandleBatchCompleted(ctx context.Context, msg *amqp.BatchCompletedMessage) error {
	slog.InfoContext(ctx, "Processing batch completed message",
		"batch_id", msg.BatchID,
		"review_required", msg.ReviewRequired)

	rows, err := w.store.ReviewRequiredByBatch(ctx, msg.BatchID)
	if err != nil {
		return fmt.Errorf("load review rows for batch %s: %w", msg.BatchID, err)
	}
	if len(rows) == 0 {
		slog.InfoContext(ctx, "No review rows to export", "batch_id", msg.BatchID)
		return nil
	}

	written, err := w.writer.AppendReviewRows(ctx, msg.BatchID, rows)
	if err != nil {
		return fmt.Errorf("export review rows for batch %s: %w", msg.BatchID, err)
	}

	slog.InfoContext(ctx, "Review rows exported",
		"batch_id", msg.BatchID,
		"rows", written)
	return nil
}
