package orders

import (
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
)

// Line is a cart line as seen at checkout, with the product's current price and stock.
type Line struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Stock     int
	Active    bool
	Quantity  int
}

type Shortage struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"product_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError lists every cart line that cannot be fulfilled.
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.Name, s.Requested, s.Available))
	}
	return "Insufficient stock for: " + strings.Join(parts, ", ")
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Plan checks every line against stock and returns the order total at current prices.
// Nothing is written; a shortage on any line rejects the whole cart.
func Plan(lines []Line) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, ErrEmptyCart
	}
	total := decimal.Zero
	var short []Shortage
	for _, l := range lines {
		available := l.Stock
		if !l.Active {
			available = 0
		}
		if l.Quantity > available {
			short = append(short, Shortage{ProductID: l.ProductID, Name: l.Name, Requested: l.Quantity, Available: available})
			continue
		}
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if len(short) > 0 {
		return decimal.Zero, &StockError{Shortages: short}
	}
	return total, nil
}
