package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dmehra2102/shopease/pkg/outbox"
)

const (
	AggregateType                 = "order"
	EventOrderPlaced              = "OrderPlaced"
	EventOrderPaymentStatusChange = "OrderPaymentStatusChanged"
)

type OrderPlaced struct {
	OrderID    int64             `json:"order_id"`
	CustomerID int64             `json:"customer_id"`
	CartID     string            `json:"cart_id"`
	PlacedAt   time.Time         `json:"placed_at"`
	TotalPrice string            `json:"total_price"`
	Items      []OrderPlacedItem `json:"items"`
}

type OrderPlacedItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderPaymentStatusChanged struct {
	OrderID int64         `json:"order_id"`
	From    PaymentStatus `json:"from"`
	To      PaymentStatus `json:"to"`
}

func NewOrderPlacedEvent(o Order, cartID, traceparent string) (outbox.Event, error) {
	ev := OrderPlaced{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		CartID:     cartID,
		PlacedAt:   o.PlacedAt,
		TotalPrice: o.TotalPrice().StringFixed(2),
		Items:      make([]OrderPlacedItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice.StringFixed(2)})
	}
	return newEvent(o.ID, EventOrderPlaced, ev, traceparent)
}

func NewPaymentStatusChangedEvent(orderID int64, from, to PaymentStatus, traceparent string) (outbox.Event, error) {
	return newEvent(orderID, EventOrderPaymentStatusChange, OrderPaymentStatusChanged{OrderID: orderID, From: from, To: to}, traceparent)
}

func newEvent(orderID int64, typ string, body any, traceparent string) (outbox.Event, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		AggregateType: AggregateType,
		AggregateID:   strconv.FormatInt(orderID, 10),
		Type:          typ,
		Payload:       payload,
		Traceparent:   traceparent,
	}, nil
}
