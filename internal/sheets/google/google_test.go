package google

import (
	"testing"
	"time"

	"bankpoke/internal/core"
)

func TestReviewRow(t *testing.T) {
	tx := core.Transaction{
		OccurredAt:   time.Date(2024, 2, 13, 12, 1, 0, 0, time.UTC),
		Type:         core.TypeExpense,
		SignedAmount: -7990,
		Currency:     "KRW",
		Merchant:     "쿠팡",
		Method:       "체크카드",
		ExpenseKind:  "real",
		Category:     "shopping",
		Confidence:   0.8,
	}

	row := reviewRow("batch-1", tx)
	if len(row) != 10 {
		t.Fatalf("row width = %d, want 10", len(row))
	}
	if row[0] != "2024-02-13T12:01:00Z" {
		t.Errorf("occurred_at cell = %v", row[0])
	}
	if row[2] != "-7990" {
		t.Errorf("amount cell = %v", row[2])
	}
	if row[8] != "0.80" {
		t.Errorf("confidence cell = %v", row[8])
	}
	if row[9] != "batch-1" {
		t.Errorf("batch cell = %v", row[9])
	}
}
