package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/storely/go-commerce-orders/internal/orders"
	"github.com/storely/go-commerce-orders/internal/redisx"
)

// Placer is implemented by *orders.Service.
type Placer interface {
	PlaceOrder(ctx context.Context, in orders.PlacementInput) (orders.PlacementResult, error)
}

type OrdersHandler struct {
	Svc   Placer
	Repo  *orders.Repo
	Redis *redis.Client
}

type PlaceOrderReq struct {
	OrderID    int64 `json:"order_id"`
	CustomerID int64 `json:"customer_id"`
	SellerID   int64 `json:"seller_id"`
	LineItemID int64 `json:"line_item_id"`
	ProductID  int64 `json:"product_id"`
	Quantity   int   `json:"quantity"`
}

type PlaceOrderResp struct {
	OrderID        int64  `json:"order_id"`
	Status         string `json:"status"`
	TotalCents     int    `json:"total_cents"`
	StockRemaining int    `json:"stock_remaining"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/products", h.listProducts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, reason string) {
	writeJSON(w, code, map[string]string{"error": reason})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.OrderID == 0 || req.CustomerID == 0 || req.SellerID == 0 ||
		req.LineItemID == 0 || req.ProductID == 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.PlaceOrder(ctx, orders.PlacementInput{
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		SellerID:   req.SellerID,
		LineItemID: req.LineItemID,
		ProductID:  req.ProductID,
		ProductQty: req.Quantity,
	})
	if err != nil {
		code, reason := mapPlacementError(err)
		writeError(w, code, reason)
		return
	}

	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, res.OrderID)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"PLACED"}`, redisx.TTLStatusCache).Err()
	}

	writeJSON(w, http.StatusCreated, PlaceOrderResp{
		OrderID:        res.OrderID,
		Status:         string(orders.StatusPlaced),
		TotalCents:     res.TotalCents,
		StockRemaining: res.Remaining,
	})
}

func mapPlacementError(err error) (int, string) {
	switch {
	case errors.Is(err, orders.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid quantity"
	case errors.Is(err, orders.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, orders.ErrCustomerNotFound):
		return http.StatusNotFound, "customer not found"
	case errors.Is(err, orders.ErrSellerNotFound):
		return http.StatusNotFound, "seller not found"
	case errors.Is(err, orders.ErrInsufficientStock):
		return http.StatusConflict, "product not available in requested quantity"
	case errors.Is(err, orders.ErrOrderExists):
		return http.StatusConflict, "order already exists"
	case errors.Is(err, orders.ErrConcurrentConflict):
		return http.StatusConflict, "conflict, retry"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID == 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	status, err := h.Repo.GetOrderStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	body, _ := json.Marshal(map[string]any{"status": status})
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	type productResp struct {
		ID         int64  `json:"id"`
		CategoryID int64  `json:"category_id"`
		Name       string `json:"name"`
		PriceCents int    `json:"price_cents"`
		Stock      int    `json:"stock"`
	}
	out := make([]productResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, productResp{
			ID: p.ID, CategoryID: p.CategoryID, Name: p.Name,
			PriceCents: p.PriceCents, Stock: p.Stock,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
