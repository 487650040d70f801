package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCartItemUpsertedLabels(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncCartItemUpserted(true)
	m.IncCartItemUpserted(false)
	m.IncCartItemUpserted(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartItemsUpserted.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartItemsUpserted.WithLabelValues("merged")))
}

func TestOrderCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncOrderPlaced()
	m.IncPlacementFailed("validation_error")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderPlacementFailed.WithLabelValues("validation_error")))
}
