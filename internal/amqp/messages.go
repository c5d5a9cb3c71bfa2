package amqp

import (
	"encoding/json"
	"time"
)

// BatchCompletedMessage tells the review export worker that an import
// batch finished. It carries only identifiers and counts; the worker
// loads the flagged rows from the database.
type BatchCompletedMessage struct {
	BatchID        string    `json:"batch_id"`
	Inserted       int       `json:"inserted"`
	ReviewRequired int       `json:"review_required"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewBatchCompletedMessage(batchID string, inserted, reviewRequired int) *BatchCompletedMessage {
	return &BatchCompletedMessage{
		BatchID:        batchID,
		Inserted:       inserted,
		ReviewRequired: reviewRequired,
		Timestamp:      time.Now(),
	}
}

func (m *BatchCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BatchCompletedMessageFromJSON(data []byte) (*BatchCompletedMessage, error) {
	var msg BatchCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
