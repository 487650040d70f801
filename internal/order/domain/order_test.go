package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatus(t *testing.T) {
	for _, s := range []string{"P", "C", "F"} {
		st, err := ParsePaymentStatus(s)
		require.NoError(t, err)
		assert.Equal(t, PaymentStatus(s), st)
	}
	for _, s := range []string{"", "p", "X", "Complete"} {
		_, err := ParsePaymentStatus(s)
		assert.Error(t, err, s)
	}
}

func TestOrderTotalUsesSnapshotPrices(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("1.10")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("19.99")},
	}}
	assert.Equal(t, "23.29", o.TotalPrice().StringFixed(2))
}

func TestNewOrderPlacedEvent(t *testing.T) {
	o := Order{
		ID:         7,
		CustomerID: 3,
		PlacedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Items:      []OrderItem{{ProductID: 9, Quantity: 2, UnitPrice: decimal.RequireFromString("5")}},
	}
	ev, err := NewOrderPlacedEvent(o, "c0ffee", "00-abc-def-01")
	require.NoError(t, err)
	assert.Equal(t, "order", ev.AggregateType)
	assert.Equal(t, "7", ev.AggregateID)
	assert.Equal(t, EventOrderPlaced, ev.Type)
	assert.Equal(t, "00-abc-def-01", ev.Traceparent)

	var body OrderPlaced
	require.NoError(t, json.Unmarshal(ev.Payload, &body))
	assert.Equal(t, "10.00", body.TotalPrice)
	assert.Equal(t, "c0ffee", body.CartID)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "5.00", body.Items[0].UnitPrice)
}
