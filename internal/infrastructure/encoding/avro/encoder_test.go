package avro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_RoundTripWithReason(t *testing.T) {
	// Arrange
	enc, err := NewOrderEventEncoder()
	require.NoError(t, err)
	occurred := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	event := OrderEvent{
		EventType:   EventOrderCancelled,
		OrderID:     "order-1",
		CustomerID:  "cust-1",
		Status:      "CANCELLED",
		TotalAmount: "500",
		FinalAmount: "630",
		Reason:      "Auto-cancel: payment timeout",
		OccurredAt:  occurred,
	}

	// Act
	binary, err := enc.Encode(event)
	require.NoError(t, err)
	record, err := enc.Decode(binary)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, EventOrderCancelled, record["event_type"])
	assert.Equal(t, "order-1", record["order_id"])
	assert.Equal(t, "cust-1", record["customer_id"])
	assert.Equal(t, "CANCELLED", record["status"])
	assert.Equal(t, "500", record["total_amount"])
	assert.Equal(t, "630", record["final_amount"])
	assert.Equal(t, map[string]interface{}{"string": "Auto-cancel: payment timeout"}, record["reason"])
	assert.Equal(t, occurred.Format(time.RFC3339Nano), record["occurred_at"])
}

func TestEncoder_RoundTripWithoutReason(t *testing.T) {
	enc, err := NewOrderEventEncoder()
	require.NoError(t, err)
	event := OrderEvent{
		EventType:   EventOrderCreated,
		OrderID:     "order-2",
		CustomerID:  "cust-1",
		Status:      "PENDING",
		TotalAmount: "1200",
		FinalAmount: "1260",
		OccurredAt:  time.Now(),
	}

	binary, err := enc.Encode(event)
	require.NoError(t, err)
	record, err := enc.Decode(binary)
	require.NoError(t, err)

	assert.Nil(t, record["reason"])
}

func TestEncoder_RejectsInvalidSchema(t *testing.T) {
	_, err := NewEncoder("not a schema")

	assert.Error(t, err)
}

func TestEncoder_RejectsGarbageBinary(t *testing.T) {
	enc, err := NewOrderEventEncoder()
	require.NoError(t, err)

	_, err = enc.Decode([]byte{0xff})

	assert.Error(t, err)
}
