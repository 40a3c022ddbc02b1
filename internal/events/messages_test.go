package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerEvent(t *testing.T) {
	event := NewLedgerEvent(KindInvoicePaid, 42)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, KindInvoicePaid, event.Kind)
	assert.Equal(t, int64(42), event.EntityID)
	assert.False(t, event.Timestamp.IsZero())

	// Each event gets its own ID.
	other := NewLedgerEvent(KindInvoicePaid, 42)
	assert.NotEqual(t, event.ID, other.ID)
}

func TestLedgerEventJSONRoundTrip(t *testing.T) {
	event := &LedgerEvent{
		ID:        "e3b0c442-98fc-4c14-9af4-000000000000",
		Kind:      KindTransactionCreated,
		EntityID:  7,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := event.ToJSON()
	require.NoError(t, err)

	parsed, err := LedgerEventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, event.ID, parsed.ID)
	assert.Equal(t, event.Kind, parsed.Kind)
	assert.Equal(t, event.EntityID, parsed.EntityID)
	assert.True(t, parsed.Timestamp.Equal(event.Timestamp))
}

func TestLedgerEventFromInvalidJSON(t *testing.T) {
	_, err := LedgerEventFromJSON([]byte(`{"entity_id": "not_a_number"}`))
	assert.Error(t, err)
}
