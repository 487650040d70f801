package http

import (
	"net/http"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
)

// opKind selects the request schema for a cart item write.
type opKind int

const (
	opAdd opKind = iota
	opUpdate
)

type itemInput struct {
	ProductID int64
	Quantity  int
}

type addItemReq struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type updateItemReq struct {
	Quantity *int `json:"quantity"`
}

var itemSchemas = map[opKind]func(r *http.Request) (itemInput, error){
	opAdd: func(r *http.Request) (itemInput, error) {
		var req addItemReq
		if err := httpx.Decode(r, &req); err != nil {
			return itemInput{}, err
		}
		if req.ProductID == nil {
			return itemInput{}, apperr.Validation("product_id is required")
		}
		if req.Quantity == nil {
			return itemInput{}, apperr.Validation("quantity is required")
		}
		return itemInput{ProductID: *req.ProductID, Quantity: *req.Quantity}, nil
	},
	opUpdate: func(r *http.Request) (itemInput, error) {
		var req updateItemReq
		if err := httpx.Decode(r, &req); err != nil {
			return itemInput{}, err
		}
		if req.Quantity == nil {
			return itemInput{}, apperr.Validation("quantity is required")
		}
		return itemInput{Quantity: *req.Quantity}, nil
	},
}

func decodeItemInput(kind opKind, r *http.Request) (itemInput, error) {
	return itemSchemas[kind](r)
}
