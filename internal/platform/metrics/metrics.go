package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the store-service Prometheus collectors.
type Metrics struct {
	OrdersPlaced         prometheus.Counter
	OrderPlacementFailed *prometheus.CounterVec
	PlaceOrderDuration   prometheus.Histogram
	CartItemsUpserted    *prometheus.CounterVec
	PaymentStatusChanged *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: f.NewCounter(prometheus.CounterOpts{
			Name: "shopease_orders_placed_total",
			Help: "Total number of orders placed from carts",
		}),
		OrderPlacementFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shopease_order_placement_failures_total",
			Help: "Order placements rejected or failed, by error code",
		}, []string{"code"}),
		PlaceOrderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopease_place_order_duration_seconds",
			Help:    "Duration of the order placement transaction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CartItemsUpserted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shopease_cart_items_upserted_total",
			Help: "Cart item adds, split by whether a line was created or merged",
		}, []string{"result"}),
		PaymentStatusChanged: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shopease_payment_status_changes_total",
			Help: "Order payment status transitions, by target status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObservePlaceOrder(start time.Time) {
	m.PlaceOrderDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncOrderPlaced() { m.OrdersPlaced.Inc() }

func (m *Metrics) IncPlacementFailed(code string) {
	m.OrderPlacementFailed.WithLabelValues(code).Inc()
}

func (m *Metrics) IncCartItemUpserted(created bool) {
	result := "merged"
	if created {
		result = "created"
	}
	m.CartItemsUpserted.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPaymentStatusChanged(status string) {
	m.PaymentStatusChanged.WithLabelValues(status).Inc()
}
