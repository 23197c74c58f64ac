package orders

import (
	"encoding/json"
	"github.com/google/uuid"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID int64     `json:"order_id"`
	UserID  int64     `json:"user_id"`
	Total   string    `json:"total_amount"`
	Items   []ItemQty `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID   int64  `json:"order_id"`
	UserID    int64  `json:"user_id"`
	From      Status `json:"from"`
	To        Status `json:"to"`
	Restocked bool   `json:"restocked"`
}

// NewEnvelope wraps an already encoded payload. traceID is usually the HTTP request id.
func NewEnvelope(eventType, producer, traceID string, orderID int64, payload []byte) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: PartitionKeyString(orderID),
		Payload:       payload,
	}
}

func (p Placed) Payload() OrderPlacedPayload {
	items := make([]ItemQty, 0, len(p.Lines))
	for _, l := range p.Lines {
		items = append(items, ItemQty{ProductID: l.ProductID, Qty: l.Quantity})
	}
	return OrderPlacedPayload{OrderID: p.OrderID, UserID: p.UserID, Total: p.Total.StringFixed(2), Items: items}
}

func (c Change) Payload() OrderStatusChangedPayload {
	return OrderStatusChangedPayload{OrderID: c.OrderID, UserID: c.UserID, From: c.From, To: c.To, Restocked: c.Restocked}
}
