package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/go-commerce-orders/internal/orders"
)

type NotificationRepo struct{ DB *pgxpool.Pool }

func (r *NotificationRepo) CreateNotification(ctx context.Context, n orders.Notification) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO notifications(product_id, message, stock_remaining)
		VALUES ($1, $2, $3)`,
		n.ProductID, n.Message, n.StockRemaining)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) ListNotifications(ctx context.Context, limit int) ([]orders.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, message, stock_remaining, created_at
		FROM notifications ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []orders.Notification
	for rows.Next() {
		var n orders.Notification
		if err := rows.Scan(&n.ID, &n.ProductID, &n.Message, &n.StockRemaining, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
