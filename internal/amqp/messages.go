package amqp

import (
	"encoding/json"
	"time"
)

const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// TransactionSyncMessage asks the export worker to mirror a transaction to
// the spreadsheet. It carries only the ID; the worker fetches the full
// record from the database.
type TransactionSyncMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// TransactionDeleteMessage asks the export worker to clear a transaction's
// spreadsheet row.
type TransactionDeleteMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Kind:      KindSync,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewTransactionDeleteMessage(id int64) *TransactionDeleteMessage {
	return &TransactionDeleteMessage{
		Kind:      KindDelete,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *TransactionDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// messageKind peeks at the kind discriminator so the consumer can route a
// delivery to the matching handler.
func messageKind(data []byte) (string, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", err
	}
	return probe.Kind, nil
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func TransactionDeleteMessageFromJSON(data []byte) (*TransactionDeleteMessage, error) {
	var msg TransactionDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
