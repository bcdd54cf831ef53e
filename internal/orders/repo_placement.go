package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlacementInput struct {
	OrderID    int64
	CustomerID int64
	SellerID   int64
	LineItemID int64
	ProductID  int64
	ProductQty int
}

type PlacementResult struct {
	OrderID    int64
	TotalCents int
	// Remaining is the product's aggregate stock after the reservation,
	// used for low-stock alerting.
	Remaining int
}

type PlacementRepo struct{ DB *pgxpool.Pool }

// PlaceOrderTx runs the whole placement as one transaction: price lookup,
// existence checks, stock reservation, order insert, line-item insert.
// Everything commits together or not at all; a concurrent reader never sees
// decremented stock without the order, nor the order without the decrement.
func (r *PlacementRepo) PlaceOrderTx(ctx context.Context, in PlacementInput) (PlacementResult, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PlacementResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var priceCents int
	err = tx.QueryRow(ctx, `SELECT price_cents FROM products WHERE id=$1`, in.ProductID).Scan(&priceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlacementResult{}, ErrProductNotFound
		}
		return PlacementResult{}, fmt.Errorf("lookup price: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id=$1)`, in.CustomerID).Scan(&exists); err != nil {
		return PlacementResult{}, fmt.Errorf("check customer: %w", err)
	}
	if !exists {
		return PlacementResult{}, ErrCustomerNotFound
	}
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sellers WHERE id=$1)`, in.SellerID).Scan(&exists); err != nil {
		return PlacementResult{}, fmt.Errorf("check seller: %w", err)
	}
	if !exists {
		return PlacementResult{}, ErrSellerNotFound
	}

	remaining, err := CheckAndReserve(ctx, tx, in.ProductID, in.ProductQty)
	if err != nil {
		if isRetryable(err) {
			return PlacementResult{}, ErrConcurrentConflict
		}
		return PlacementResult{}, err
	}

	total := in.ProductQty * priceCents
	now := time.Now().UTC()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, seller_id, status, order_date)
		VALUES ($1, $2, $3, $4, $5)`,
		in.OrderID, in.CustomerID, in.SellerID, StatusPlaced, now)
	if err != nil {
		if isUniqueViolation(err) {
			return PlacementResult{}, ErrOrderExists
		}
		return PlacementResult{}, fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_items(id, order_id, product_id, quantity, price_cents, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		in.LineItemID, in.OrderID, in.ProductID, in.ProductQty, priceCents, total)
	if err != nil {
		if isUniqueViolation(err) {
			return PlacementResult{}, ErrOrderExists
		}
		return PlacementResult{}, fmt.Errorf("insert line item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return PlacementResult{}, ErrConcurrentConflict
		}
		return PlacementResult{}, err
	}
	return PlacementResult{OrderID: in.OrderID, TotalCents: total, Remaining: remaining}, nil
}
