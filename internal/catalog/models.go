package catalog

import (
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/shopspring/decimal"
	"math"
	"strings"
	"time"
)

type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

func ParseStatus(s string) (ProductStatus, bool) {
	switch st := ProductStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusInactive:
		return st, true
	}
	return "", false
}

type Category struct {
	ID        int64     `json:"category_id"`
	Name      string    `json:"category_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is reported with a nil category when it is uncategorized,
// including after its category was deleted.
type Product struct {
	ID           int64           `json:"product_id"`
	CategoryID   *int64          `json:"category_id"`
	CategoryName *string         `json:"category_name"`
	Name         string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock_quantity"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Status       ProductStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MaxPrice is the largest price a NUMERIC(10,2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// ProductInput is the full set of writable product fields.
type ProductInput struct {
	CategoryID  *int64
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description string
	Image       string
	Status      ProductStatus
}

func (in ProductInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return ErrProductFields
	case in.Price.IsNegative():
		return apperr.Invalid("Price must not be negative")
	case in.Price.GreaterThan(MaxPrice):
		return apperr.Invalid("Price must not exceed 99999999.99")
	case !in.Price.Equal(in.Price.Round(2)):
		return apperr.Invalid("Price must have at most 2 decimal places")
	case in.Stock < 0:
		return apperr.Invalid("Stock quantity must not be negative")
	case in.Stock > math.MaxInt32:
		return apperr.Invalid("Stock quantity is too large")
	case in.Status != StatusActive && in.Status != StatusInactive:
		return apperr.Invalid("Status must be active or inactive")
	}
	return nil
}

var (
	ErrCategoryNotFound = apperr.NotFound("Category not found")
	ErrCategoryExists   = apperr.Conflict("Category already exists")
	ErrCategoryName     = apperr.Invalid("Category name is required")
	ErrUnknownCategory  = apperr.Invalid("Category not found")
	ErrProductNotFound  = apperr.NotFound("Product not found")
	ErrProductFields    = apperr.Invalid("Product name and price are required")
)
