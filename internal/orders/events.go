package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
	EventStockLow    = "StockLow"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "order-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually the order id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload types per event ----

type PlacedItem struct {
	LineItemID int64 `json:"line_item_id"`
	ProductID  int64 `json:"product_id"`
	Qty        int   `json:"qty"`
	PriceCents int   `json:"price_cents"`
	TotalCents int   `json:"total_cents"`
}

type OrderPlacedPayload struct {
	OrderID    int64        `json:"order_id"`
	CustomerID int64        `json:"customer_id"`
	SellerID   int64        `json:"seller_id"`
	Items      []PlacedItem `json:"items"`
	TotalCents int          `json:"total_cents"`
}

type StockLowPayload struct {
	ProductID int64 `json:"product_id"`
	Remaining int   `json:"remaining"`
	Threshold int   `json:"threshold"`
}
