package amqp

import (
	"encoding/json"
	"time"
)

// TransactionExportMessage is the lightweight payload queued when a
// transaction needs to be exported to the spreadsheet. It carries only the
// ID; the worker loads the full row from the database.
type TransactionExportMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionExportMessage(id int64) *TransactionExportMessage {
	return &TransactionExportMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionExportMessageFromJSON(data []byte) (*TransactionExportMessage, error) {
	var msg TransactionExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
