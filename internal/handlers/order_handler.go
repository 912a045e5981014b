package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plateful/restaurant-ops/internal/cart"
	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
	"github.com/plateful/restaurant-ops/internal/workflow"
)

// OrderHandler handles order HTTP requests. Order creation builds a cart
// from the submitted items so quantities, notes and price snapshots
// follow the same rules the composition flow uses; the coordinator then
// prices and persists the draft.
type OrderHandler struct {
	orders      repository.OrderStore
	menu        repository.MenuCatalog
	coordinator *workflow.Coordinator
	log         *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders repository.OrderStore, menu repository.MenuCatalog, coordinator *workflow.Coordinator, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, menu: menu, coordinator: coordinator, log: log}
}

type createOrderRequest struct {
	TableID       int64  `json:"tableId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Notes         string `json:"notes"`
	OrderItems    []struct {
		MenuItemID int64  `json:"menuItemId"`
		Quantity   int    `json:"quantity"`
		Notes      string `json:"notes"`
	} `json:"orderItems"`
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ListByStatus handles GET /api/orders/status/{status}
func (h *OrderHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		respondError(w, h.log, fmt.Errorf("%w: unknown order status %q", models.ErrInvalidInput, status))
		return
	}

	orders, err := h.orders.ListByStatus(r.Context(), status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := cart.New()
	for _, item := range req.OrderItems {
		if err := c.SetQuantity(item.MenuItemID, item.Quantity); err != nil {
			respondError(w, h.log, err)
			return
		}
		if item.Notes != "" {
			c.SetNote(item.MenuItemID, item.Notes)
		}
	}

	lines, err := c.ToOrderDraft(r.Context(), h.menu)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	order, err := h.coordinator.CreateOrder(r.Context(), req.TableID, lines, workflow.CustomerInfo{
		Name:  req.CustomerName,
		Phone: req.CustomerPhone,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// UpdateStatus handles PUT /api/orders/{orderId}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	status, err := decodeStatus(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	order, err := h.coordinator.ChangeOrderStatus(r.Context(), id, models.OrderStatus(status))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("order status changed", "order_id", id, "status", status)
	writeJSON(w, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/{orderId}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("order deleted", "order_id", id)
	w.WriteHeader(http.StatusNoContent)
}
