package amqp

import (
	"encoding/json"
	"time"
)

// ReceiptSyncMessage asks the worker to replay the remote synchronization
// of one locally saved receipt: upload the artifact to
// Receipts/{year}/{category} and push the database mirror afterwards.
type ReceiptSyncMessage struct {
	LocalPath string    `json:"local_path"`
	Year      int       `json:"year"`
	Category  string    `json:"category"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReceiptSyncMessage creates a sync message for a saved artifact.
func NewReceiptSyncMessage(localPath string, year int, category, filename string) *ReceiptSyncMessage {
	return &ReceiptSyncMessage{
		LocalPath: localPath,
		Year:      year,
		Category:  category,
		Filename:  filename,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReceiptSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptSyncMessageFromJSON creates a message from JSON bytes
func ReceiptSyncMessageFromJSON(data []byte) (*ReceiptSyncMessage, error) {
	var msg ReceiptSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
