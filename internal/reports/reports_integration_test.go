package reports

import (
	"context"
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/go-commerce-orders/internal/testutil"
)

// seedDataset builds a small two-category, two-seller history:
//
//	product 1 (cat 1, 10.00): 6 units sold -> 60.00
//	product 2 (cat 2, 25.00): 4 units sold -> 100.00
func seedDataset(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	testutil.TruncateAll(t, ctx, pool)
	testutil.SeedCatalog(t, ctx, pool, 1, 2, 5, 1)
	if _, err := pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES (2, 'Books')`); err != nil {
		t.Fatalf("insert category: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO customers (id, name, email) VALUES (3, 'Second Customer', 'c3@example.com')`); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO sellers (id, name) VALUES (6, 'Second Seller')`); err != nil {
		t.Fatalf("insert seller: %v", err)
	}
	testutil.SeedProduct(t, ctx, pool, 1, 1, 1000)
	testutil.SeedProduct(t, ctx, pool, 2, 2, 2500)
	testutil.SeedStock(t, ctx, pool, 1, 1, 3)
	testutil.SeedStock(t, ctx, pool, 2, 1, 50)

	stmts := []string{
		`INSERT INTO orders (id, customer_id, seller_id, status, order_date) VALUES
			(101, 2, 5, 'DELIVERED', NOW() - INTERVAL '10 days'),
			(102, 2, 6, 'SHIPPED',   NOW() - INTERVAL '8 days'),
			(103, 3, 5, 'PLACED',    NOW() - INTERVAL '2 days')`,
		`INSERT INTO order_items (id, order_id, product_id, quantity, price_cents, total_cents) VALUES
			(201, 101, 1, 4, 1000, 4000),
			(202, 102, 2, 4, 2500, 10000),
			(203, 103, 1, 2, 1000, 2000)`,
		`INSERT INTO payments (id, order_id, amount_cents, method, paid_at) VALUES
			(301, 101, 4000, 'card', NOW() - INTERVAL '10 days'),
			(302, 102, 10000, 'card', NOW() - INTERVAL '8 days')`,
		`INSERT INTO shipping (id, order_id, carrier, shipped_at, delivered_at) VALUES
			(401, 101, 'ups', NOW() - INTERVAL '8 days', NOW() - INTERVAL '6 days'),
			(402, 102, 'usps', NOW() - INTERVAL '4 days', NULL)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	seedDataset(t, ctx, pool)

	r := &Reports{DB: pool}

	t.Run("top products", func(t *testing.T) {
		out, err := r.TopProducts(ctx, 10)
		if err != nil {
			t.Fatalf("top products: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 products, got %d", len(out))
		}
		if out[0].ProductID != 1 || out[0].UnitsSold != 6 || out[0].RevenueCents != 6000 || out[0].Rank != 1 {
			t.Fatalf("unexpected leader %+v", out[0])
		}
		if out[1].ProductID != 2 || out[1].UnitsSold != 4 || out[1].RevenueCents != 10000 {
			t.Fatalf("unexpected runner-up %+v", out[1])
		}
	})

	t.Run("revenue by category", func(t *testing.T) {
		out, err := r.RevenueByCategory(ctx)
		if err != nil {
			t.Fatalf("revenue by category: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(out))
		}
		if out[0].CategoryID != 2 || out[0].RevenueCents != 10000 {
			t.Fatalf("unexpected leader %+v", out[0])
		}
		if math.Abs(out[0].SharePct-62.5) > 0.01 || math.Abs(out[1].SharePct-37.5) > 0.01 {
			t.Fatalf("shares = %.2f/%.2f, want 62.50/37.50", out[0].SharePct, out[1].SharePct)
		}
	})

	t.Run("customer lifetime value", func(t *testing.T) {
		out, err := r.CustomerLifetimeValue(ctx, 10)
		if err != nil {
			t.Fatalf("cltv: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 customers, got %d", len(out))
		}
		if out[0].CustomerID != 2 || out[0].Orders != 2 || out[0].SpendCents != 14000 || out[0].Rank != 1 {
			t.Fatalf("unexpected top customer %+v", out[0])
		}
	})

	t.Run("top sellers", func(t *testing.T) {
		out, err := r.TopSellers(ctx, 10)
		if err != nil {
			t.Fatalf("top sellers: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 sellers, got %d", len(out))
		}
		if out[0].SellerID != 6 || out[0].RevenueCents != 10000 {
			t.Fatalf("unexpected top seller %+v", out[0])
		}
		if out[1].SellerID != 5 || out[1].Orders != 2 || out[1].RevenueCents != 6000 {
			t.Fatalf("unexpected second seller %+v", out[1])
		}
	})

	t.Run("shipping delays", func(t *testing.T) {
		out, err := r.ShippingDelays(ctx)
		if err != nil {
			t.Fatalf("shipping delays: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("expected 2 sellers with shipments, got %d", len(out))
		}
		// Seller 6 shipped after 4 days, seller 5 after 2.
		if out[0].SellerID != 6 || math.Abs(out[0].AvgDelayDays-4.0) > 0.1 {
			t.Fatalf("unexpected slowest seller %+v", out[0])
		}
	})

	t.Run("low stock", func(t *testing.T) {
		out, err := r.LowStock(ctx, 10)
		if err != nil {
			t.Fatalf("low stock: %v", err)
		}
		if len(out) != 1 || out[0].ProductID != 1 || out[0].Stock != 3 {
			t.Fatalf("unexpected low-stock rows %+v", out)
		}
	})
}
