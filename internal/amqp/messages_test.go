package amqp

import (
	"testing"
	"time"
)

func TestNewBatchCompletedMessage(t *testing.T) {
	msg := NewBatchCompletedMessage("batch-1", 12, 3)

	if msg.BatchID != "batch-1" {
		t.Errorf("BatchID = %q, want batch-1", msg.BatchID)
	}
	if msg.Inserted != 12 || msg.ReviewRequired != 3 {
		t.Errorf("counts = (%d, %d), want (12, 3)", msg.Inserted, msg.ReviewRequired)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp = %v, want recent", msg.Timestamp)
	}
}

func TestBatchCompletedMessage_InvalidJSON(t *testing.T) {
	if _, err := BatchCompletedMessageFromJSON([]byte(`{"inserted": "twelve"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
