// Package memory is an in-process TransactionStore used by the memory
// backend and by tests. A single mutex serializes every operation.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bankpoke/internal/core"
)

type Store struct {
	mu           sync.Mutex
	batches      map[string]core.ImportBatch
	transactions []core.Transaction
	hashes       map[string]struct{}
	nextID       int64
}

func NewStore() *Store {
	return &Store{
		batches: make(map[string]core.ImportBatch),
		hashes:  make(map[string]struct{}),
		nextID:  1,
	}
}

func (s *Store) CreateBatch(_ context.Context, sourceType string) (core.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := core.ImportBatch{
		ID:         uuid.NewString(),
		SourceType: sourceType,
		Status:     core.BatchPending,
		CreatedAt:  time.Now(),
	}
	s.batches[batch.ID] = batch
	return batch, nil
}

func (s *Store) CompleteBatch(_ context.Context, batchID string) error {
	return s.setBatchStatus(batchID, core.BatchCompleted)
}

func (s *Store) FailBatch(_ context.Context, batchID string) error {
	return s.setBatchStatus(batchID, core.BatchFailed)
}

func (s *Store) setBatchStatus(batchID string, status core.BatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.batches[batchID]
	if !ok {
		return fmt.Errorf("batch %s not found", batchID)
	}
	batch.Status = status
	batch.CompletedAt = time.Now()
	s.batches[batchID] = batch
	return nil
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hashes[tx.RowHash]; exists {
		return 0, core.ErrDuplicateRow
	}
	tx.ID = s.nextID
	s.nextID++
	tx.Status = core.StatusActive
	s.hashes[tx.RowHash] = struct{}{}
	s.transactions = append(s.transactions, tx)
	return tx.ID, nil
}

func (s *Store) UnmatchedTransferCandidates(_ context.Context, since time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.Type == core.TypeTransfer && !tx.IsPaired() &&
			tx.Status == core.StatusActive && !tx.OccurredAt.Before(since) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) AssignTransferGroup(_ context.Context, group core.TransferGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamped := 0
	for i := range s.transactions {
		tx := &s.transactions[i]
		if tx.ID != group.LeftID && tx.ID != group.RightID {
			continue
		}
		if tx.IsPaired() {
			return fmt.Errorf("transaction %d already belongs to group %s", tx.ID, tx.TransferGroupID)
		}
		tx.TransferGroupID = group.ID
		tx.ReviewRequired = false
		stamped++
	}
	if stamped != 2 {
		return fmt.Errorf("group %s stamped %d legs, want 2", group.ID, stamped)
	}
	return nil
}

func (s *Store) ReviewRequiredByBatch(_ context.Context, batchID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.BatchID == batchID && tx.ReviewRequired && tx.Status == core.StatusActive {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Batch returns the current state of one batch.
func (s *Store) Batch(batchID string) (core.ImportBatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	return b, ok
}

// Transactions returns a copy of every stored record.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}
