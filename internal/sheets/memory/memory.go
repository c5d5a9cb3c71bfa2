// Package memory is an in-process ReviewWriter used by tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"sync"

	"bankpoke/internal/core"
	ports "bankpoke/internal/sheets"
)

type Writer struct {
	mu   sync.Mutex
	rows map[string][]core.Transaction
}

var _ ports.ReviewWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{rows: make(map[string][]core.Transaction)}
}

func (w *Writer) AppendReviewRows(_ context.Context, batchID string, rows []core.Transaction) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows[batchID] = append(w.rows[batchID], rows...)
	return len(rows), nil
}

// Rows returns the rows appended for one batch.
func (w *Writer) Rows(batchID string) []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Transaction, len(w.rows[batchID]))
	copy(out, w.rows[batchID])
	return out
}
