package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindTransactionCreated = "transaction.created"
	KindInvoicePaid        = "invoice.paid"
)

// LedgerEvent is the lightweight message published after a ledger
// write. It carries only the entity ID; consumers fetch the current
// state from the store, so a stale or duplicated delivery is harmless.
type LedgerEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind string, entityID int64) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
