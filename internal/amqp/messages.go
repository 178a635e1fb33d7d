package amqp

import (
	"encoding/json"
	"time"
)

// MutationKind identifies which store operation produced a message.
type MutationKind string

const (
	KindInsert MutationKind = "insert"
	KindUpdate MutationKind = "update"
	KindDelete MutationKind = "delete"
	KindImport MutationKind = "import"
)

// MutationMessage tells the mirror worker that the transaction log changed.
// It carries only the mutation kind and the affected transaction ID; the
// worker reads current state from the store, so a stale message never
// overwrites a newer one.
type MutationMessage struct {
	Kind      MutationKind `json:"kind"`
	TxID      string       `json:"tx_id,omitempty"`
	Rows      int          `json:"rows,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewMutationMessage stamps a message for the given mutation.
func NewMutationMessage(kind MutationKind, txID string, rows int) *MutationMessage {
	return &MutationMessage{
		Kind:      kind,
		TxID:      txID,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationMessageFromJSON creates a message from JSON bytes
func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
