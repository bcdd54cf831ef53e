package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CheckAndReserve locks every inventory row for the product and decrements
// the requested quantity, or leaves stock untouched when the aggregate is
// short. It must run inside the caller's transaction so the decrement commits
// or rolls back together with the order itself.
//
// Warehouse policy: stock is aggregated across all warehouses. Rows are
// locked in ascending warehouse_id order (a stable lock order, so two
// concurrent reservations for the same product cannot deadlock on each
// other), and the quantity is drained from the lowest-numbered warehouses
// first. Returns the product's remaining aggregate stock.
func CheckAndReserve(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error) {
	rows, err := tx.Query(ctx, `
		SELECT warehouse_id, stock FROM inventory
		WHERE product_id=$1
		ORDER BY warehouse_id
		FOR UPDATE`, productID)
	if err != nil {
		return 0, fmt.Errorf("lock inventory: %w", err)
	}

	type slot struct {
		warehouseID int64
		stock       int
	}
	var slots []slot
	total := 0
	for rows.Next() {
		var s slot
		if err := rows.Scan(&s.warehouseID, &s.stock); err != nil {
			rows.Close()
			return 0, err
		}
		slots = append(slots, s)
		total += s.stock
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if total < qty {
		return total, ErrInsufficientStock
	}

	left := qty
	for _, s := range slots {
		if left == 0 {
			break
		}
		take := s.stock
		if take > left {
			take = left
		}
		if take == 0 {
			continue
		}
		ct, err := tx.Exec(ctx,
			`UPDATE inventory SET stock = stock - $3 WHERE product_id=$1 AND warehouse_id=$2`,
			productID, s.warehouseID, take)
		if err != nil {
			return 0, fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() != 1 {
			return 0, fmt.Errorf("decrement stock: product %d warehouse %d gone", productID, s.warehouseID)
		}
		left -= take
	}

	return total - qty, nil
}
