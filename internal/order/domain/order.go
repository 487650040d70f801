package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "P"
	PaymentComplete PaymentStatus = "C"
	PaymentFailed   PaymentStatus = "F"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentComplete, PaymentFailed:
		return st, nil
	}
	return "", apperr.Validation("payment_status must be one of P, C, F")
}

var (
	ErrOrderNotFound = apperr.NotFound("order not found")
	ErrCartNotFound  = apperr.NotFound("cart not found")
	ErrCartEmpty     = apperr.Validation("cart is empty")
)

// Order is immutable once placed, except for its payment status.
type Order struct {
	ID            int64
	CustomerID    int64
	PlacedAt      time.Time
	PaymentStatus PaymentStatus
	Items         []OrderItem
}

// OrderItem snapshots the product price at placement time. Later catalog
// price changes never reach it.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// PlaceRequest converts the cart CartID into an order for UserID.
type PlaceRequest struct {
	CartID      uuid.UUID
	UserID      string
	Traceparent string
}
