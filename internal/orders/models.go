package orders

import "time"

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID         int64
	CategoryID int64
	Name       string
	PriceCents int
	CostCents  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Customer struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

type Seller struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// InventoryRecord is one product's stock in one warehouse. A product may have
// rows in several warehouses; reservations see the aggregate.
type InventoryRecord struct {
	ProductID   int64
	WarehouseID int64
	Stock       int
	LastRestock time.Time
}

type Order struct {
	ID         int64
	CustomerID int64
	SellerID   int64
	Status     Status // see status.go
	OrderDate  time.Time
}

// LineItem captures quantity and the unit price at the time of sale.
// PriceCents is a snapshot; later catalog changes do not touch it.
type LineItem struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Quantity   int
	PriceCents int
	TotalCents int
}

// Notification is a persisted low-stock alert written by the alerts consumer.
type Notification struct {
	ID             int64
	ProductID      int64
	Message        string
	StockRemaining int
	CreatedAt      time.Time
}

// ProductStock is a catalog row with its aggregate stock, for listings.
type ProductStock struct {
	Product
	Stock int
}
