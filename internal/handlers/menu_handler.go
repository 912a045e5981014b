package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
)

// MenuHandler handles menu-catalog HTTP requests. Reads are open to all
// staff; mutations are MANAGER-gated by route middleware.
type MenuHandler struct {
	catalog repository.MenuCatalog
	log     *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(catalog repository.MenuCatalog, log *slog.Logger) *MenuHandler {
	return &MenuHandler{catalog: catalog, log: log}
}

func validateMenuItem(item *models.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", models.ErrInvalidInput)
	}
	if !models.ValidCategory(item.Category) {
		return fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, item.Category)
	}
	if item.PreparationTime < 0 {
		return fmt.Errorf("%w: preparation time must not be negative", models.ErrInvalidInput)
	}
	return nil
}

// ListItems handles GET /api/menu/items
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/menu/items/{menuItemId}
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "menuItemId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	item, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ListByCategory handles GET /api/menu/items/category/{category}
func (h *MenuHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	items, err := h.catalog.ListByCategory(r.Context(), category)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListAvailable handles GET /api/menu/items/available
func (h *MenuHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListAvailable(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateItem handles POST /api/menu/items
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateMenuItem(&item); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.catalog.Create(r.Context(), &item); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("menu item created", "menu_item_id", item.ID, "name", item.Name)
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/menu/items/{menuItemId}
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "menuItemId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item.ID = id
	if err := validateMenuItem(&item); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.catalog.Update(r.Context(), &item); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/menu/items/{menuItemId}
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "menuItemId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("menu item deleted", "menu_item_id", id)
	w.WriteHeader(http.StatusNoContent)
}
