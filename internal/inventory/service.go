package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/storely/go-commerce-orders/internal/orders"
	"github.com/storely/go-commerce-orders/internal/redisx"
)

type NotificationStore interface {
	CreateNotification(ctx context.Context, n orders.Notification) error
}

// Deduper short-circuits events already seen; *RedisDeduper implements it.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type RedisDeduper struct {
	Client  *redis.Client
	Service string
}

func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.Client, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID))
}

func (d *RedisDeduper) Mark(ctx context.Context, eventID string) error {
	return d.Client.Set(ctx, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID), "1", redisx.TTLDedup).Err()
}

// AlertService turns StockLow events into persisted notifications. Delivery
// is at-least-once, so duplicates are filtered by event id before writing.
type AlertService struct {
	Store NotificationStore
	Dedup Deduper
}

// HandleStockLow is wired as the alerts consumer handler.
func (s *AlertService) HandleStockLow(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventStockLow {
		return nil // ignore
	}

	if seen, err := s.Dedup.Seen(ctx, env.EventID); err == nil && seen {
		return nil
	}

	var p orders.StockLowPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return err
	}

	n := orders.Notification{
		ProductID:      p.ProductID,
		Message:        AlertMessage(p),
		StockRemaining: p.Remaining,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Store.CreateNotification(ctx, n); err != nil {
		return err
	}
	return s.Dedup.Mark(ctx, env.EventID)
}

// AlertMessage renders the operator-facing text for a low-stock event.
func AlertMessage(p orders.StockLowPayload) string {
	if p.Remaining == 0 {
		return fmt.Sprintf("product %d is out of stock", p.ProductID)
	}
	return fmt.Sprintf("product %d stock low: %d left (threshold %d)", p.ProductID, p.Remaining, p.Threshold)
}
