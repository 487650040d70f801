package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
)

var (
	ErrCartNotFound     = apperr.NotFound("cart not found")
	ErrItemNotFound     = apperr.NotFound("cart item not found")
	ErrNoSuchProduct    = apperr.Validation("no such product")
	ErrInvalidQuantity  = apperr.Validation("quantity must be greater than or equal to 1")
	ErrQuantityTooLarge = apperr.Validation("quantity must be less than or equal to 32767")
)

// MaxQuantity matches the SMALLINT quantity columns.
const MaxQuantity = math.MaxInt16

// Cart is an anonymous, provisional basket identified by a random UUID.
type Cart struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Items     []Item
}

func New(now time.Time) Cart {
	return Cart{ID: uuid.New(), CreatedAt: now.UTC()}
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

type Product struct {
	ID        int64
	Title     string
	UnitPrice decimal.Decimal
}

type Item struct {
	ID       int64
	CartID   uuid.UUID
	Product  Product
	Quantity int
}

func (i Item) TotalPrice() decimal.Decimal {
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UpsertResult is the outcome of adding a product to a cart: either a new
// line was created, or the quantity was merged into the existing line.
type UpsertResult struct {
	Item    Item
	Created bool
}

func ValidateQuantity(q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	if q > MaxQuantity {
		return ErrQuantityTooLarge
	}
	return nil
}
