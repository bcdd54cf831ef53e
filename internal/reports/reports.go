// Package reports holds the read-only analytic projections. Every query here
// is pure aggregation or windowing over the persisted tables; nothing in this
// package writes.
package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Reports struct{ DB *pgxpool.Pool }

type TopProduct struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	UnitsSold    int    `json:"units_sold"`
	RevenueCents int64  `json:"revenue_cents"`
	Rank         int    `json:"rank"`
}

func (r *Reports) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT p.id, p.name,
       SUM(oi.quantity)    AS units_sold,
       SUM(oi.total_cents) AS revenue_cents,
       RANK() OVER (ORDER BY SUM(oi.quantity) DESC) AS rnk
FROM order_items oi
JOIN products p ON p.id = oi.product_id
GROUP BY p.id, p.name
ORDER BY units_sold DESC, p.id
LIMIT $1`
	rows, err := r.DB.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var out []TopProduct
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductID, &t.Name, &t.UnitsSold, &t.RevenueCents, &t.Rank); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type CategoryRevenue struct {
	CategoryID   int64   `json:"category_id"`
	Category     string  `json:"category"`
	RevenueCents int64   `json:"revenue_cents"`
	SharePct     float64 `json:"share_pct"`
}

// RevenueByCategory reports each category's revenue and its percent of total.
func (r *Reports) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	const q = `
SELECT c.id, c.name,
       SUM(oi.total_cents) AS revenue_cents,
       ROUND(100.0 * SUM(oi.total_cents) / SUM(SUM(oi.total_cents)) OVER (), 2) AS share_pct
FROM order_items oi
JOIN products p ON p.id = oi.product_id
JOIN categories c ON c.id = p.category_id
GROUP BY c.id, c.name
ORDER BY revenue_cents DESC`
	rows, err := r.DB.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("revenue by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryRevenue
	for rows.Next() {
		var c CategoryRevenue
		if err := rows.Scan(&c.CategoryID, &c.Category, &c.RevenueCents, &c.SharePct); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type CustomerValue struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Orders     int    `json:"orders"`
	SpendCents int64  `json:"spend_cents"`
	Rank       int    `json:"rank"`
}

// CustomerLifetimeValue ranks customers by total spend across all their orders.
func (r *Reports) CustomerLifetimeValue(ctx context.Context, limit int) ([]CustomerValue, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT cu.id, cu.name,
       COUNT(DISTINCT o.id)  AS orders,
       SUM(oi.total_cents)   AS spend_cents,
       RANK() OVER (ORDER BY SUM(oi.total_cents) DESC) AS rnk
FROM customers cu
JOIN orders o ON o.customer_id = cu.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY cu.id, cu.name
ORDER BY spend_cents DESC, cu.id
LIMIT $1`
	rows, err := r.DB.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("customer lifetime value: %w", err)
	}
	defer rows.Close()

	var out []CustomerValue
	for rows.Next() {
		var c CustomerValue
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.Orders, &c.SpendCents, &c.Rank); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type SellerRevenue struct {
	SellerID     int64  `json:"seller_id"`
	Name         string `json:"name"`
	Orders       int    `json:"orders"`
	RevenueCents int64  `json:"revenue_cents"`
	Rank         int    `json:"rank"`
}

func (r *Reports) TopSellers(ctx context.Context, limit int) ([]SellerRevenue, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT s.id, s.name,
       COUNT(DISTINCT o.id) AS orders,
       SUM(oi.total_cents)  AS revenue_cents,
       RANK() OVER (ORDER BY SUM(oi.total_cents) DESC) AS rnk
FROM sellers s
JOIN orders o ON o.seller_id = s.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY s.id, s.name
ORDER BY revenue_cents DESC, s.id
LIMIT $1`
	rows, err := r.DB.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer rows.Close()

	var out []SellerRevenue
	for rows.Next() {
		var s SellerRevenue
		if err := rows.Scan(&s.SellerID, &s.Name, &s.Orders, &s.RevenueCents, &s.Rank); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type ShippingDelay struct {
	SellerID     int64   `json:"seller_id"`
	Name         string  `json:"name"`
	Shipments    int     `json:"shipments"`
	AvgDelayDays float64 `json:"avg_delay_days"`
}

// ShippingDelays reports the average days between order placement and shipment
// per seller, over orders that have shipped.
func (r *Reports) ShippingDelays(ctx context.Context) ([]ShippingDelay, error) {
	const q = `
SELECT s.id, s.name,
       COUNT(sh.id) AS shipments,
       ROUND(AVG(EXTRACT(EPOCH FROM (sh.shipped_at - o.order_date)) / 86400.0)::numeric, 2) AS avg_delay_days
FROM sellers s
JOIN orders o ON o.seller_id = s.id
JOIN shipping sh ON sh.order_id = o.id
WHERE sh.shipped_at IS NOT NULL
GROUP BY s.id, s.name
ORDER BY avg_delay_days DESC`
	rows, err := r.DB.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("shipping delays: %w", err)
	}
	defer rows.Close()

	var out []ShippingDelay
	for rows.Next() {
		var d ShippingDelay
		if err := rows.Scan(&d.SellerID, &d.Name, &d.Shipments, &d.AvgDelayDays); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type LowStockProduct struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// LowStock lists products whose aggregate stock across warehouses is below
// the threshold.
func (r *Reports) LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	const q = `
SELECT p.id, p.name, COALESCE(SUM(i.stock), 0) AS stock
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
GROUP BY p.id, p.name
HAVING COALESCE(SUM(i.stock), 0) < $1
ORDER BY stock, p.id`
	rows, err := r.DB.Query(ctx, q, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	var out []LowStockProduct
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
