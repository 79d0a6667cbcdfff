package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"spendtrack/internal/core"
)

type SyncOp string

const (
	OpUpsert SyncOp = "upsert"
	OpDelete SyncOp = "delete"
)

// SyncMessage mirrors one write against the primary store so a worker
// can replay it on a secondary backend. Because secondary backends
// match rows structurally, an upsert of an existing transaction also
// carries the pre-update shape in Old.
type SyncMessage struct {
	Op        SyncOp      `json:"op"`
	Old       core.Record `json:"old,omitempty"`
	New       core.Record `json:"new,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewUpsertMessage(old *core.Transaction, updated core.Transaction) *SyncMessage {
	msg := &SyncMessage{
		Op:        OpUpsert,
		New:       updated.ToRecord(),
		Timestamp: time.Now(),
	}
	if old != nil {
		msg.Old = old.ToRecord()
	}
	return msg
}

func NewDeleteMessage(txn core.Transaction) *SyncMessage {
	return &SyncMessage{
		Op:        OpDelete,
		Old:       txn.ToRecord(),
		Timestamp: time.Now(),
	}
}

func (m *SyncMessage) Validate() error {
	switch m.Op {
	case OpUpsert:
		if m.New == nil {
			return fmt.Errorf("upsert message without new record")
		}
	case OpDelete:
		if m.Old == nil {
			return fmt.Errorf("delete message without old record")
		}
	default:
		return fmt.Errorf("unknown sync op %q", m.Op)
	}
	return nil
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
