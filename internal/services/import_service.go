// Package services sequences the ingestion pipeline per import batch:
// normalize, validate, classify in parallel across rows, then a
// serialized insert pass and a transfer-pairing pass.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bankpoke/internal/amqp"
	"bankpoke/internal/classify"
	"bankpoke/internal/core"
	"bankpoke/internal/normalize"
	"bankpoke/internal/transfer"
	"bankpoke/internal/validate"
)

// Row outcomes reported on the batch manifest.
const (
	OutcomeInserted         = "inserted"
	OutcomeDuplicateSkipped = "duplicate_skipped"
	OutcomeRejected         = "rejected"
)

// TransactionStore is the injected persistence capability. Insert
// must be atomic with respect to the row-hash uniqueness check:
// concurrent imports racing on an identical row must not both insert.
type TransactionStore interface {
	CreateBatch(ctx context.Context, sourceType string) (core.ImportBatch, error)
	CompleteBatch(ctx context.Context, batchID string) error
	FailBatch(ctx context.Context, batchID string) error

	// InsertTransaction returns core.ErrDuplicateRow when the row
	// hash is already persisted.
	InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)

	// UnmatchedTransferCandidates returns unpaired transfer records
	// that occurred at or after since.
	UnmatchedTransferCandidates(ctx context.Context, since time.Time) ([]core.Transaction, error)

	// AssignTransferGroup stamps both legs with the group id and
	// clears their review flags.
	AssignTransferGroup(ctx context.Context, group core.TransferGroup) error
}

// RowOutcome is one manifest entry, in input order.
type RowOutcome struct {
	Index    int
	Outcome  string
	Reason   string
	Warnings []core.Warning
}

// ImportResult is the caller-visible summary of one batch.
type ImportResult struct {
	Batch             core.ImportBatch
	Inserted          int
	DuplicatesSkipped int
	Rejected          int
	ReviewRequired    int
	Manifest          []RowOutcome
	Groups            []core.TransferGroup
	UnmatchedTransfer []core.Transaction
}

// Config holds the orchestrator knobs.
type Config struct {
	// PairingHorizon bounds how far back existing unmatched transfer
	// candidates are pulled into a batch's pairing pass.
	PairingHorizon time.Duration
	// Parallelism caps the normalize/validate/classify stage; rows
	// are independent so any positive value is safe.
	Parallelism int
}

func DefaultConfig() Config {
	return Config{
		PairingHorizon: 48 * time.Hour,
		Parallelism:    4,
	}
}

// ImportService owns batch-level state; the pipeline stages it calls
// are pure functions over single records.
type ImportService struct {
	store      TransactionStore
	normalizer *normalize.Normalizer
	validator  *validate.Validator
	rules      *classify.RuleSet
	pairer     *transfer.Pairer
	amqpClient *amqp.Client
	config     Config
}

func NewImportService(
	store TransactionStore,
	normalizer *normalize.Normalizer,
	validator *validate.Validator,
	rules *classify.RuleSet,
	pairer *transfer.Pairer,
	amqpClient *amqp.Client,
	config Config,
) *ImportService {
	return &ImportService{
		store:      store,
		normalizer: normalizer,
		validator:  validator,
		rules:      rules,
		pairer:     pairer,
		amqpClient: amqpClient,
		config:     config,
	}
}

type processedRow struct {
	tx       core.Transaction
	warnings []core.Warning
	err      error
}

// ImportRows runs one batch end to end. Per-row faults are isolated
// into the manifest; the batch itself fails only when it cannot be
// created, completed, or when ctx is cancelled mid-insert.
func (s *ImportService) ImportRows(ctx context.Context, sourceType string, rows []core.RawRow) (*ImportResult, error) {
	batch, err := s.store.CreateBatch(ctx, sourceType)
	if err != nil {
		return nil, fmt.Errorf("%w: create batch: %v", core.ErrBatchIO, err)
	}

	processed := s.processRows(batch.ID, rows)

	result := &ImportResult{Batch: batch, Manifest: make([]RowOutcome, len(rows))}
	var inserted []core.Transaction

	// Insert serially: the hash-uniqueness check and write form one
	// critical section per store.
	for i, p := range processed {
		if err := ctx.Err(); err != nil {
			if failErr := s.store.FailBatch(ctx, batch.ID); failErr != nil {
				slog.ErrorContext(ctx, "Failed to mark batch failed",
					"batch_id", batch.ID, "error", failErr)
			}
			return nil, fmt.Errorf("import batch %s aborted: %w", batch.ID, err)
		}
		outcome := RowOutcome{Index: i, Warnings: p.warnings}
		switch {
		case p.err != nil:
			outcome.Outcome = OutcomeRejected
			outcome.Reason = p.err.Error()
			result.Rejected++
		default:
			id, err := s.store.InsertTransaction(ctx, p.tx)
			switch {
			case errors.Is(err, core.ErrDuplicateRow):
				outcome.Outcome = OutcomeDuplicateSkipped
				result.DuplicatesSkipped++
			case err != nil:
				outcome.Outcome = OutcomeRejected
				outcome.Reason = err.Error()
				result.Rejected++
				slog.ErrorContext(ctx, "Transaction insert failed",
					"batch_id", batch.ID, "row", i, "error", err)
			default:
				p.tx.ID = id
				inserted = append(inserted, p.tx)
				outcome.Outcome = OutcomeInserted
				result.Inserted++
				if p.tx.ReviewRequired {
					result.ReviewRequired++
				}
			}
		}
		result.Manifest[i] = outcome
	}

	if err := s.pairTransfers(ctx, inserted, result); err != nil {
		// Pairing faults leave candidates in review rather than
		// failing a batch whose rows are already persisted.
		slog.ErrorContext(ctx, "Transfer pairing failed",
			"batch_id", batch.ID, "error", err)
	}

	if err := s.store.CompleteBatch(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("complete batch %s: %w", batch.ID, err)
	}
	result.Batch.Status = core.BatchCompleted

	slog.InfoContext(ctx, "Import batch completed",
		"batch_id", batch.ID,
		"source_type", sourceType,
		"inserted", result.Inserted,
		"duplicates_skipped", result.DuplicatesSkipped,
		"rejected", result.Rejected,
		"transfer_groups", len(result.Groups),
		"unmatched_transfers", len(result.UnmatchedTransfer))

	s.publishCompleted(ctx, batch.ID, result)
	return result, nil
}

// processRows runs the pure stages. Rows have no ordering dependency,
// so they fan out across a bounded group; results keep input order.
func (s *ImportService) processRows(batchID string, rows []core.RawRow) []processedRow {
	processed := make([]processedRow, len(rows))

	var g errgroup.Group
	g.SetLimit(s.config.Parallelism)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			processed[i] = s.processRow(batchID, row)
			return nil
		})
	}
	// Workers never return errors; faults are captured per row.
	_ = g.Wait()
	return processed
}

func (s *ImportService) processRow(batchID string, row core.RawRow) processedRow {
	tx, err := s.normalizer.Normalize(row)
	if err != nil {
		return processedRow{err: err}
	}
	tx.BatchID = batchID

	warnings, review := s.validator.Check(tx)
	tx.ReviewRequired = review

	decision := classify.Classify(tx, s.rules)
	tx.ExpenseKind = decision.ExpenseKind
	tx.Category = decision.Category
	tx.Confidence = decision.Confidence

	return processedRow{tx: tx, warnings: warnings}
}

func (s *ImportService) pairTransfers(ctx context.Context, inserted []core.Transaction, result *ImportResult) error {
	candidates := make([]core.Transaction, 0)
	var earliest time.Time
	for _, tx := range inserted {
		if tx.Type != core.TypeTransfer {
			continue
		}
		candidates = append(candidates, tx)
		if earliest.IsZero() || tx.OccurredAt.Before(earliest) {
			earliest = tx.OccurredAt
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Pull in existing unmatched candidates so legs imported in
	// separate batches can still pair.
	since := earliest.Add(-s.config.PairingHorizon)
	existing, err := s.store.UnmatchedTransferCandidates(ctx, since)
	if err != nil {
		return fmt.Errorf("load unmatched candidates: %w", err)
	}
	seen := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		seen[c.ID] = true
	}
	for _, c := range existing {
		if !seen[c.ID] {
			candidates = append(candidates, c)
		}
	}

	groups, unmatched := s.pairer.Pair(candidates)
	for _, g := range groups {
		if err := s.store.AssignTransferGroup(ctx, g); err != nil {
			return fmt.Errorf("assign transfer group %s: %w", g.ID, err)
		}
	}
	result.Groups = groups
	result.UnmatchedTransfer = unmatched
	return nil
}

func (s *ImportService) publishCompleted(ctx context.Context, batchID string, result *ImportResult) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping batch message")
		return
	}
	if err := s.amqpClient.PublishBatchCompleted(ctx, batchID, result.Inserted, result.ReviewRequired); err != nil {
		// The batch is already persisted; export lag is recoverable.
		slog.ErrorContext(ctx, "Failed to publish batch completed message",
			"batch_id", batchID, "error", err)
	}
}
