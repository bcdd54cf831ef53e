package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/go-commerce-orders/internal/testutil"
)

func placementEnv(t *testing.T) (context.Context, *PlacementRepo, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)
	testutil.SeedCatalog(t, ctx, pool, 1, 2, 5, 1)
	testutil.SeedProduct(t, ctx, pool, 7, 1, 1000)
	return ctx, &PlacementRepo{DB: pool}, pool
}

func TestPlacementRepo_PlaceOrderTx(t *testing.T) {
	ctx, repo, pool := placementEnv(t)
	testutil.SeedStock(t, ctx, pool, 7, 1, 40)

	res, err := repo.PlaceOrderTx(ctx, PlacementInput{
		OrderID: 25000, CustomerID: 2, SellerID: 5,
		LineItemID: 25001, ProductID: 7, ProductQty: 40,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if res.TotalCents != 40000 {
		t.Fatalf("total = %d, want 40000", res.TotalCents)
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
	if got := testutil.Stock(t, ctx, pool, 7); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}

	r := &Repo{DB: pool}
	order, items, err := r.GetOrder(ctx, 25000)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != StatusPlaced || order.CustomerID != 2 || order.SellerID != 5 {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	it := items[0]
	if it.ID != 25001 || it.Quantity != 40 || it.PriceCents != 1000 || it.TotalCents != 40000 {
		t.Fatalf("unexpected line item %+v", it)
	}

	// Repeating on zero stock rejects without writing.
	_, err = repo.PlaceOrderTx(ctx, PlacementInput{
		OrderID: 25002, CustomerID: 2, SellerID: 5,
		LineItemID: 25003, ProductID: 7, ProductQty: 1,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := testutil.Stock(t, ctx, pool, 7); got != 0 {
		t.Fatalf("rejection moved stock: %d", got)
	}
	if _, err := r.GetOrderStatus(ctx, 25002); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("rejected order exists: %v", err)
	}
}

func TestPlacementRepo_RejectsUnknownReferences(t *testing.T) {
	ctx, repo, pool := placementEnv(t)
	testutil.SeedStock(t, ctx, pool, 7, 1, 5)

	in := PlacementInput{OrderID: 1, CustomerID: 2, SellerID: 5, LineItemID: 2, ProductID: 999, ProductQty: 1}
	if _, err := repo.PlaceOrderTx(ctx, in); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	in = PlacementInput{OrderID: 1, CustomerID: 999, SellerID: 5, LineItemID: 2, ProductID: 7, ProductQty: 1}
	if _, err := repo.PlaceOrderTx(ctx, in); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	in = PlacementInput{OrderID: 1, CustomerID: 2, SellerID: 999, LineItemID: 2, ProductID: 7, ProductQty: 1}
	if _, err := repo.PlaceOrderTx(ctx, in); !errors.Is(err, ErrSellerNotFound) {
		t.Fatalf("expected ErrSellerNotFound, got %v", err)
	}
	if got := testutil.Stock(t, ctx, pool, 7); got != 5 {
		t.Fatalf("rejections moved stock: %d", got)
	}
}

func TestPlacementRepo_DrainsWarehousesInOrder(t *testing.T) {
	ctx, repo, pool := placementEnv(t)
	if _, err := pool.Exec(ctx, `INSERT INTO warehouses (id, name, city) VALUES (2, 'WH-2', 'Reno')`); err != nil {
		t.Fatalf("insert warehouse: %v", err)
	}
	testutil.SeedStock(t, ctx, pool, 7, 1, 15)
	testutil.SeedStock(t, ctx, pool, 7, 2, 30)

	res, err := repo.PlaceOrderTx(ctx, PlacementInput{
		OrderID: 1, CustomerID: 2, SellerID: 5, LineItemID: 2, ProductID: 7, ProductQty: 20,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if res.Remaining != 25 {
		t.Fatalf("remaining = %d, want 25", res.Remaining)
	}

	var wh1, wh2 int
	if err := pool.QueryRow(ctx, `SELECT stock FROM inventory WHERE product_id=7 AND warehouse_id=1`).Scan(&wh1); err != nil {
		t.Fatalf("read wh1: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT stock FROM inventory WHERE product_id=7 AND warehouse_id=2`).Scan(&wh2); err != nil {
		t.Fatalf("read wh2: %v", err)
	}
	if wh1 != 0 || wh2 != 25 {
		t.Fatalf("warehouse stocks = %d/%d, want 0/25", wh1, wh2)
	}
}

func TestPlacementRepo_PriceSnapshot(t *testing.T) {
	ctx, repo, pool := placementEnv(t)
	testutil.SeedStock(t, ctx, pool, 7, 1, 10)

	if _, err := repo.PlaceOrderTx(ctx, PlacementInput{
		OrderID: 1, CustomerID: 2, SellerID: 5, LineItemID: 2, ProductID: 7, ProductQty: 2,
	}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := pool.Exec(ctx, `UPDATE products SET price_cents = 9999 WHERE id=7`); err != nil {
		t.Fatalf("update price: %v", err)
	}

	var price, total int
	if err := pool.QueryRow(ctx, `SELECT price_cents, total_cents FROM order_items WHERE id=2`).Scan(&price, &total); err != nil {
		t.Fatalf("read item: %v", err)
	}
	if price != 1000 || total != 2000 {
		t.Fatalf("price/total = %d/%d, want 1000/2000", price, total)
	}
}

func TestPlacementRepo_ConcurrentPlacements(t *testing.T) {
	ctx, repo, pool := placementEnv(t)
	testutil.SeedStock(t, ctx, pool, 7, 1, 40)

	// Two concurrent 30-unit placements against 40 units: exactly one wins.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.PlaceOrderTx(ctx, PlacementInput{
				OrderID: int64(100 + i), CustomerID: 2, SellerID: 5,
				LineItemID: int64(200 + i), ProductID: 7, ProductQty: 30,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConcurrentConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 success, got %d", succeeded)
	}
	if got := testutil.Stock(t, ctx, pool, 7); got != 10 {
		t.Fatalf("stock = %d, want 10", got)
	}
}

func TestPlacementRepo_NoOversellingUnderLoad(t *testing.T) {
	ctx, repo, pool := placementEnv(t)
	const stock = 25
	const callers = 40
	testutil.SeedStock(t, ctx, pool, 7, 1, stock)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			_, err := repo.PlaceOrderTx(ctx, PlacementInput{
				OrderID: 1000 + i, CustomerID: 2, SellerID: 5,
				LineItemID: 2000 + i, ProductID: 7, ProductQty: 1,
			})
			results <- err
		}(int64(i))
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConcurrentConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded > stock {
		t.Fatalf("oversold: %d successes for %d units", succeeded, stock)
	}
	final := testutil.Stock(t, ctx, pool, 7)
	if final < 0 {
		t.Fatalf("stock went negative: %d", final)
	}
	if final != stock-succeeded {
		t.Fatalf("stock = %d, want %d", final, stock-succeeded)
	}

	var orderCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderCount); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != succeeded {
		t.Fatalf("orders = %d, successes = %d", orderCount, succeeded)
	}
}
