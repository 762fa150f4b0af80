package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart with its quantity.
type CartLine struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// NewCartLineID builds the "cart_<productId>_<unixMillis>" line id.
func NewCartLineID(productID string, at time.Time) string {
	return fmt.Sprintf("cart_%s_%d", productID, at.UnixMilli())
}

// Subtotal uses the sale price when present.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.SaleablePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is the read model handed to the UI.
type CartView struct {
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
