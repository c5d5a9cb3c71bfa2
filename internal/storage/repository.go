// Package storage persists transactions, import batches and transfer
// groups in SQLite. The schema enforces row-hash uniqueness so dedup
// holds even across concurrent importers.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bankpoke/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateBatch(ctx context.Context, sourceType string) (core.ImportBatch, error) {
	batch := core.ImportBatch{
		ID:         uuid.NewString(),
		SourceType: sourceType,
		Status:     core.BatchPending,
		CreatedAt:  time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_batches (id, source_type, status, created_at) VALUES (?, ?, ?, ?)`,
		batch.ID, batch.SourceType, string(batch.Status), batch.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.ImportBatch{}, fmt.Errorf("insert batch: %w", err)
	}

	slog.InfoContext(ctx, "Import batch created",
		"batch_id", batch.ID,
		"source_type", sourceType)
	return batch, nil
}

func (r *SQLiteRepository) CompleteBatch(ctx context.Context, batchID string) error {
	return r.setBatchStatus(ctx, batchID, core.BatchCompleted)
}

func (r *SQLiteRepository) FailBatch(ctx context.Context, batchID string) error {
	return r.setBatchStatus(ctx, batchID, core.BatchFailed)
}

func (r *SQLiteRepository) setBatchStatus(ctx context.Context, batchID string, status core.BatchStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE import_batches SET status = ?, completed_at = ? WHERE id = ?`,
		string(status), time.Now().Format(time.RFC3339), batchID)
	if err != nil {
		return fmt.Errorf("update batch %s: %w", batchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("batch %s not found", batchID)
	}
	return nil
}

// InsertTransaction persists one canonical record. A row-hash collision
// with an existing record returns core.ErrDuplicateRow.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			batch_id, occurred_at, type, amount, signed_amount, currency,
			merchant, method, major_cat, minor_cat, note,
			expense_kind, category, confidence, row_hash,
			transfer_group_id, review_required, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.BatchID, tx.OccurredAt.Format(time.RFC3339), string(tx.Type),
		tx.Amount, tx.SignedAmount, tx.Currency,
		tx.Merchant, tx.Method, tx.MajorCat, tx.MinorCat, tx.Note,
		tx.ExpenseKind, tx.Category, tx.Confidence, tx.RowHash,
		tx.TransferGroupID, tx.ReviewRequired, string(core.StatusActive))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateRow
		}
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"batch_id", tx.BatchID,
		"type", tx.Type,
		"signed_amount", tx.SignedAmount,
		"merchant", tx.Merchant)
	return id, nil
}

// UnmatchedTransferCandidates returns active transfer records without a
// group that occurred at or after since, ordered by occurred_at then id.
func (r *SQLiteRepository) UnmatchedTransferCandidates(ctx context.Context, since time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE type = ? AND transfer_group_id = '' AND status = ? AND occurred_at >= ?
		ORDER BY occurred_at, id`,
		string(core.TypeTransfer), string(core.StatusActive), since.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("query unmatched candidates: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// AssignTransferGroup records the group and stamps both legs in one
// transaction.
func (r *SQLiteRepository) AssignTransferGroup(ctx context.Context, group core.TransferGroup) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO transfer_groups (id, left_id, right_id, dictionary_hit, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID, group.LeftID, group.RightID, group.DictionaryHit, group.Confidence,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert transfer group: %w", err)
	}

	res, err := dbTx.ExecContext(ctx,
		`UPDATE transactions SET transfer_group_id = ?, review_required = 0
		 WHERE id IN (?, ?) AND transfer_group_id = ''`,
		group.ID, group.LeftID, group.RightID)
	if err != nil {
		return fmt.Errorf("stamp group legs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected != 2 {
		return fmt.Errorf("group %s stamped %d legs, want 2", group.ID, affected)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit transfer group: %w", err)
	}

	slog.InfoContext(ctx, "Transfer group assigned",
		"group_id", group.ID,
		"left_id", group.LeftID,
		"right_id", group.RightID,
		"dictionary_hit", group.DictionaryHit)
	return nil
}

// ReviewRequiredByBatch returns a batch's records still flagged for
// manual review.
func (r *SQLiteRepository) ReviewRequiredByBatch(ctx context.Context, batchID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE batch_id = ? AND review_required = 1 AND status = ?
		ORDER BY occurred_at, id`,
		batchID, string(core.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("query review required: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const transactionColumns = `id, batch_id, occurred_at, type, amount, signed_amount, currency,
	merchant, method, major_cat, minor_cat, note,
	expense_kind, category, confidence, row_hash,
	transfer_group_id, review_required, status`

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			tx         core.Transaction
			occurredAt string
			txType     string
			status     string
		)
		err := rows.Scan(
			&tx.ID, &tx.BatchID, &occurredAt, &txType, &tx.Amount, &tx.SignedAmount, &tx.Currency,
			&tx.Merchant, &tx.Method, &tx.MajorCat, &tx.MinorCat, &tx.Note,
			&tx.ExpenseKind, &tx.Category, &tx.Confidence, &tx.RowHash,
			&tx.TransferGroupID, &tx.ReviewRequired, &status)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.OccurredAt, err = time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at: %w", err)
		}
		tx.Type = core.TxType(txType)
		tx.Status = core.RecordStatus(status)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
