package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/storely/go-commerce-orders/internal/kafka"
)

// PlacementStore is the atomic unit of work; *PlacementRepo implements it.
type PlacementStore interface {
	PlaceOrderTx(ctx context.Context, in PlacementInput) (PlacementResult, error)
}

// Publisher matches kafkax.Producer.Publish.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store             PlacementStore
	ProducerPlaced    Publisher // orders.placed
	ProducerStockLow  Publisher // inventory.stock.low
	ServiceName       string
	LowStockThreshold int

	// MaxAttempts bounds retries on ErrConcurrentConflict; 0 means default.
	MaxAttempts int
}

const defaultMaxAttempts = 3

// PlaceOrder validates the request, runs the placement transaction with a
// bounded retry on transient conflicts, and publishes events after commit.
// A rejection of any kind leaves every table untouched.
func (s *Service) PlaceOrder(ctx context.Context, in PlacementInput) (PlacementResult, error) {
	if in.ProductQty <= 0 {
		return PlacementResult{}, ErrInvalidQuantity
	}

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	var res PlacementResult
	var err error
	for i := 0; i < attempts; i++ {
		res, err = s.Store.PlaceOrderTx(ctx, in)
		if err == nil || !errors.Is(err, ErrConcurrentConflict) {
			break
		}
		select {
		case <-ctx.Done():
			return PlacementResult{}, ctx.Err()
		case <-time.After(time.Duration(i+1) * 25 * time.Millisecond):
		}
	}
	if err != nil {
		return PlacementResult{}, err
	}

	s.publishPlaced(in, res)
	if s.LowStockThreshold > 0 && res.Remaining < s.LowStockThreshold {
		s.publishStockLow(in.ProductID, res.Remaining)
	}
	return res, nil
}

func (s *Service) publishPlaced(in PlacementInput, res PlacementResult) {
	if s.ProducerPlaced == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: string(PartitionKey(res.OrderID)),
		Payload: kafkax.MustMarshal(OrderPlacedPayload{
			OrderID:    res.OrderID,
			CustomerID: in.CustomerID,
			SellerID:   in.SellerID,
			Items: []PlacedItem{{
				LineItemID: in.LineItemID,
				ProductID:  in.ProductID,
				Qty:        in.ProductQty,
				PriceCents: res.TotalCents / in.ProductQty,
				TotalCents: res.TotalCents,
			}},
			TotalCents: res.TotalCents,
		}),
	}
	s.ProducerPlaced.Publish(PartitionKey(res.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishStockLow(productID int64, remaining int) {
	if s.ProducerStockLow == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: string(ProductKey(productID)),
		Payload: kafkax.MustMarshal(StockLowPayload{
			ProductID: productID,
			Remaining: remaining,
			Threshold: s.LowStockThreshold,
		}),
	}
	s.ProducerStockLow.Publish(ProductKey(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
