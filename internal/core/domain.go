package core

import (
	"errors"
	"time"
)

// Transaction types as they appear after normalization.
const (
	TypeIncome   TxType = "income"
	TypeExpense  TxType = "expense"
	TypeTransfer TxType = "transfer"
)

// Record lifecycle states.
const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
	StatusMerged  RecordStatus = "merged"
)

// Import batch states.
const (
	BatchPending   BatchStatus = "pending"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

type (
	TxType       string
	RecordStatus string
	BatchStatus  string

	// RawRow is one unmodified statement row as read by the caller.
	// Fields mirror the bank export columns; the core never mutates
	// a RawRow.
	RawRow struct {
		Date        string
		Time        string
		Type        string
		MajorCat    string
		MinorCat    string
		Description string
		AmountText  string
		Currency    string
		Method      string
		Memo        string
	}

	// Transaction is the canonical record produced from one RawRow.
	// Amount is always abs(SignedAmount); optional text fields hold
	// "" when the source field was blank or whitespace-only.
	Transaction struct {
		ID              int64
		BatchID         string
		OccurredAt      time.Time
		Type            TxType
		Amount          int64
		SignedAmount    int64
		Currency        string
		Merchant        string
		Method          string
		MajorCat        string
		MinorCat        string
		Note            string
		ExpenseKind     string
		Category        string
		Confidence      float64
		RowHash         string
		TransferGroupID string
		ReviewRequired  bool
		Status          RecordStatus
	}

	// TransferGroup pairs exactly two opposite-signed transfer records
	// as one internal money movement.
	TransferGroup struct {
		ID            string
		LeftID        int64
		RightID       int64
		DictionaryHit bool
		Confidence    float64
	}

	// ImportBatch tracks one ingestion run.
	ImportBatch struct {
		ID          string
		SourceType  string
		Status      BatchStatus
		CreatedAt   time.Time
		CompletedAt time.Time
	}
)

// Warning codes attached by validation. Warnings never reject a
// record; they surface on the batch manifest and via ReviewRequired.
type Warning string

const (
	WarnSignMismatchExpensePositive Warning = "SIGN_MISMATCH_EXPENSE_POSITIVE"
	WarnSignMismatchIncomeNegative  Warning = "SIGN_MISMATCH_INCOME_NEGATIVE"
	WarnUnsupportedCurrency         Warning = "UNSUPPORTED_CURRENCY"
)

var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrMalformedAmount    = errors.New("malformed amount")
	ErrDuplicateRow       = errors.New("duplicate row")
	ErrBatchIO            = errors.New("batch io failure")
)

// CheckInvariants reports the first violated structural invariant on a
// canonical record.
func (t Transaction) CheckInvariants() error {
	abs := t.SignedAmount
	if abs < 0 {
		abs = -abs
	}
	if t.Amount != abs {
		return errors.New("amount must equal abs(signed_amount)")
	}
	switch t.Type {
	case TypeIncome, TypeExpense, TypeTransfer:
	default:
		return errors.New("unknown transaction type")
	}
	if t.RowHash == "" {
		return errors.New("missing row hash")
	}
	return nil
}

// IsPaired reports whether the record belongs to a transfer group.
func (t Transaction) IsPaired() bool {
	return t.TransferGroupID != ""
}
