package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bankpoke/internal/core"
)

func testTx(hash string, offset time.Duration) core.Transaction {
	return core.Transaction{
		BatchID:      "b",
		OccurredAt:   time.Date(2024, 2, 13, 9, 0, 0, 0, time.UTC).Add(offset),
		Type:         core.TypeTransfer,
		Amount:       1000,
		SignedAmount: -1000,
		Currency:     "KRW",
		RowHash:      hash,
	}
}

func TestStore_DuplicateHashRejected(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	id, err := store.InsertTransaction(ctx, testTx("h1", 0))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}

	if _, err := store.InsertTransaction(ctx, testTx("h1", time.Hour)); !errors.Is(err, core.ErrDuplicateRow) {
		t.Errorf("second insert error = %v, want ErrDuplicateRow", err)
	}
	if len(store.Transactions()) != 1 {
		t.Errorf("stored = %d, want 1", len(store.Transactions()))
	}
}

func TestStore_ConcurrentInsertsSameHash(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const writers = 8
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.InsertTransaction(ctx, testTx("contended", 0))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, core.ErrDuplicateRow):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != writers-1 {
		t.Errorf("inserted = %d duplicates = %d, want exactly one winner", ok, dup)
	}
}

func TestStore_BatchLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	batch, err := store.CreateBatch(ctx, "tsv")
	if err != nil {
		t.Fatal(err)
	}
	if batch.Status != core.BatchPending {
		t.Errorf("status = %q, want pending", batch.Status)
	}

	if err := store.CompleteBatch(ctx, batch.ID); err != nil {
		t.Fatal(err)
	}
	got, ok := store.Batch(batch.ID)
	if !ok || got.Status != core.BatchCompleted || got.CompletedAt.IsZero() {
		t.Errorf("batch = %+v", got)
	}

	if err := store.FailBatch(ctx, "missing"); err == nil {
		t.Error("expected error for unknown batch")
	}
}

func TestStore_UnmatchedCandidatesRespectSince(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	old := testTx("old", -72*time.Hour)
	recent := testTx("recent", 0)
	if _, err := store.InsertTransaction(ctx, old); err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertTransaction(ctx, recent); err != nil {
		t.Fatal(err)
	}

	got, err := store.UnmatchedTransferCandidates(ctx, recent.OccurredAt.Add(-48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RowHash != "recent" {
		t.Errorf("candidates = %+v, want only the recent one", got)
	}
}

func TestStore_AssignTransferGroup(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	left := testTx("l", 0)
	left.ReviewRequired = true
	right := testTx("r", time.Minute)
	right.SignedAmount = 1000
	right.ReviewRequired = true

	leftID, _ := store.InsertTransaction(ctx, left)
	rightID, _ := store.InsertTransaction(ctx, right)

	group := core.TransferGroup{ID: "g1", LeftID: leftID, RightID: rightID, Confidence: 0.9}
	if err := store.AssignTransferGroup(ctx, group); err != nil {
		t.Fatal(err)
	}
	for _, tx := range store.Transactions() {
		if tx.TransferGroupID != "g1" || tx.ReviewRequired {
			t.Errorf("leg %d = %+v", tx.ID, tx)
		}
	}

	// Re-stamping a paired leg must fail.
	if err := store.AssignTransferGroup(ctx, core.TransferGroup{ID: "g2", LeftID: leftID, RightID: rightID}); err == nil {
		t.Error("expected error when re-pairing stamped legs")
	}
}
