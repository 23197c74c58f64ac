package orders

import (
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

type Order struct {
	ID              int64           `json:"order_id"`
	UserID          int64           `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Status          Status          `json:"order_status"`
	DeliveryAddress string          `json:"delivery_address"`
	Phone           string          `json:"phone"`
	CreatedAt       time.Time       `json:"created_at"`

	// set on admin listings
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`

	// set on listings
	ItemCount   int    `json:"item_count,omitempty"`
	ItemSummary string `json:"items_summary,omitempty"`

	// set on single-order reads
	Items []Item `json:"items,omitempty"`
}

// Item is an order line. ProductID is nil once the product has been deleted;
// ProductName and Price keep the values captured at checkout.
type Item struct {
	ID          int64           `json:"order_item_id"`
	ProductID   *int64          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PlaceInput struct {
	DeliveryAddress string `json:"delivery_address"`
	Phone           string `json:"phone"`
	PaymentMethod   string `json:"payment_method"`
}

// Normalize trims the input and resolves the payment method.
func (in PlaceInput) Normalize() (PlaceInput, PaymentMethod, error) {
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.DeliveryAddress == "" || in.Phone == "" || strings.TrimSpace(in.PaymentMethod) == "" {
		return in, "", ErrPlaceFields
	}
	m, ok := ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return in, "", ErrPaymentMethod
	}
	in.PaymentMethod = string(m)
	return in, m, nil
}

// Placed describes a committed order.
type Placed struct {
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"-"`
	Total   decimal.Decimal `json:"total_amount"`
	Lines   []Line          `json:"-"`
}

// Change describes a status update. Changed is false when the order already had the status.
type Change struct {
	OrderID   int64
	UserID    int64
	From      Status
	To        Status
	Changed   bool
	Restocked bool
}

var (
	ErrPlaceFields       = apperr.Invalid("Delivery address, phone, and payment method are required")
	ErrPaymentMethod     = apperr.Invalid("Invalid payment method")
	ErrEmptyCart         = apperr.Invalid("Cart is empty")
	ErrInsufficientStock = apperr.Conflict("Insufficient stock")
	ErrNotFound          = apperr.NotFound("Order not found")
	ErrInvalidStatus     = apperr.Invalid("Valid order status is required")
	ErrInvalidTransition = apperr.Conflict("Invalid status transition")
)
