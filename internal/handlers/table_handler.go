package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
	"github.com/plateful/restaurant-ops/internal/workflow"
)

// TableHandler handles dining-table HTTP requests. Status changes go
// through the workflow coordinator; everything else hits the store
// directly.
type TableHandler struct {
	tables      repository.TableStore
	coordinator *workflow.Coordinator
	log         *slog.Logger
}

// NewTableHandler creates a new table handler
func NewTableHandler(tables repository.TableStore, coordinator *workflow.Coordinator, log *slog.Logger) *TableHandler {
	return &TableHandler{tables: tables, coordinator: coordinator, log: log}
}

func validateTable(table *models.Table) error {
	if table.TableNumber < 1 {
		return fmt.Errorf("%w: table number must be positive", models.ErrInvalidInput)
	}
	if table.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", models.ErrInvalidInput)
	}
	if table.Status != "" && !table.Status.Valid() {
		return fmt.Errorf("%w: unknown table status %q", models.ErrInvalidInput, table.Status)
	}
	return nil
}

// ListTables handles GET /api/tables
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.List(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// GetTable handles GET /api/tables/{tableId}
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tableId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	table, err := h.tables.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// ListByStatus handles GET /api/tables/status/{status}
func (h *TableHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.TableStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		respondError(w, h.log, fmt.Errorf("%w: unknown table status %q", models.ErrInvalidInput, status))
		return
	}

	tables, err := h.tables.ListByStatus(r.Context(), status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// ListByCapacity handles GET /api/tables/capacity/{capacity}. It returns
// tables seating at least the requested party size.
func (h *TableHandler) ListByCapacity(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "capacity")
	capacity, err := strconv.Atoi(raw)
	if err != nil || capacity < 1 {
		respondError(w, h.log, fmt.Errorf("%w: invalid capacity %q", models.ErrInvalidInput, raw))
		return
	}

	tables, err := h.tables.ListByMinCapacity(r.Context(), capacity)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// CreateTable handles POST /api/tables
func (h *TableHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var table models.Table
	if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if table.Status == "" {
		table.Status = models.TableAvailable
	}
	if err := validateTable(&table); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.tables.Create(r.Context(), &table); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("table created", "table_id", table.ID, "table_number", table.TableNumber)
	writeJSON(w, http.StatusCreated, table)
}

// UpdateTable handles PUT /api/tables/{tableId}
func (h *TableHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tableId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var table models.Table
	if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	table.ID = id
	if table.Status == "" {
		current, err := h.tables.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		table.Status = current.Status
	}
	if err := validateTable(&table); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.tables.Update(r.Context(), &table); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// UpdateStatus handles PUT /api/tables/{tableId}/status
func (h *TableHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tableId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	status, err := decodeStatus(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	table, err := h.coordinator.ChangeTableStatus(r.Context(), id, models.TableStatus(status))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("table status changed", "table_id", id, "status", status)
	writeJSON(w, http.StatusOK, table)
}

// DeleteTable handles DELETE /api/tables/{tableId}
func (h *TableHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tableId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.tables.Delete(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("table deleted", "table_id", id)
	w.WriteHeader(http.StatusNoContent)
}
