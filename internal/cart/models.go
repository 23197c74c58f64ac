package cart

import (
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/shopspring/decimal"
	"time"
)

// Item is one cart line joined with the product it refers to.
type Item struct {
	ID          int64           `json:"cart_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock_quantity"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	AddedAt     time.Time       `json:"added_at"`
}

type Cart struct {
	Items []Item          `json:"items"`
	Count int             `json:"item_count"`
	Total decimal.Decimal `json:"total"`
}

// NewCart fills in line totals and sums the cart.
func NewCart(items []Item) Cart {
	c := Cart{Items: items, Total: decimal.Zero}
	if c.Items == nil {
		c.Items = []Item{}
	}
	for i := range c.Items {
		it := &c.Items[i]
		it.LineTotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		c.Total = c.Total.Add(it.LineTotal)
		c.Count += it.Quantity
	}
	return c
}

// CheckQuantity validates a resulting cart quantity against the product's stock.
func CheckQuantity(qty, stock int) error {
	if qty < 1 {
		return ErrQuantity
	}
	if qty > stock {
		return ErrInsufficientStock
	}
	return nil
}

var (
	ErrQuantity          = apperr.Invalid("Valid quantity is required")
	ErrInsufficientStock = apperr.Conflict("Insufficient stock")
	ErrProductNotFound   = apperr.NotFound("Product not found")
	ErrProductInactive   = apperr.Invalid("Product is not available")
	ErrItemNotFound      = apperr.NotFound("Cart item not found")
)
