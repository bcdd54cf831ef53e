package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetProduct(ctx context.Context, id int64) (Product, error) {
	const q = `SELECT id, category_id, name, price_cents, cost_cents, created_at, updated_at
	           FROM products WHERE id=$1`
	var p Product
	err := r.DB.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.PriceCents, &p.CostCents, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("get order status: %w", err)
	}
	return Status(s), nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID int64) (Order, []LineItem, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx,
		`SELECT id, customer_id, seller_id, status, order_date FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.SellerID, &status, &o.OrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, ErrOrderNotFound
		}
		return Order{}, nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = Status(status)

	rows, err := r.DB.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price_cents, total_cents
		 FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return Order{}, nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceCents, &it.TotalCents); err != nil {
			return Order{}, nil, err
		}
		items = append(items, it)
	}
	return o, items, rows.Err()
}

func (r *Repo) ListProducts(ctx context.Context) ([]ProductStock, error) {
	const q = `
SELECT p.id, p.category_id, p.name, p.price_cents, p.cost_cents, p.created_at, p.updated_at,
       COALESCE(SUM(i.stock), 0) AS stock
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
GROUP BY p.id
ORDER BY p.id`
	rows, err := r.DB.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []ProductStock
	for rows.Next() {
		var p ProductStock
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.PriceCents, &p.CostCents,
			&p.CreatedAt, &p.UpdatedAt, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- pg error classification ----

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isRetryable reports serialization failures and deadlocks, which a caller
// may retry on a fresh transaction.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
