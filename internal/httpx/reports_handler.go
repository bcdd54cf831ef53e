package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storely/go-commerce-orders/internal/reports"
)

type ReportsHandler struct {
	Reports *reports.Reports
	// LowStockThreshold is the default for /reports/low-stock.
	LowStockThreshold int
}

func (h *ReportsHandler) Register(r *chi.Mux) {
	r.Get("/reports/top-products", h.topProducts)
	r.Get("/reports/revenue-by-category", h.revenueByCategory)
	r.Get("/reports/customer-value", h.customerValue)
	r.Get("/reports/top-sellers", h.topSellers)
	r.Get("/reports/shipping-delays", h.shippingDelays)
	r.Get("/reports/low-stock", h.lowStock)
}

func reportCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 10*time.Second)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (h *ReportsHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reportCtx(r)
	defer cancel()
	out, err := h.Reports.TopProducts(ctx, queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) revenueByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reportCtx(r)
	defer cancel()
	out, err := h.Reports.RevenueByCategory(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) customerValue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reportCtx(r)
	defer cancel()
	out, err := h.Reports.CustomerLifetimeValue(ctx, queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) topSellers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reportCtx(r)
	defer cancel()
	out, err := h.Reports.TopSellers(ctx, queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) shippingDelays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reportCtx(r)
	defer cancel()
	out, err := h.Reports.ShippingDelays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reportCtx(r)
	defer cancel()
	out, err := h.Reports.LowStock(ctx, queryInt(r, "threshold", h.LowStockThreshold))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
