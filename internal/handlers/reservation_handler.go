package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
	"github.com/plateful/restaurant-ops/internal/workflow"
)

// ReservationHandler handles reservation HTTP requests. Status changes go
// through the workflow coordinator so table cascades apply.
type ReservationHandler struct {
	reservations repository.ReservationStore
	coordinator  *workflow.Coordinator
	log          *slog.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservations repository.ReservationStore, coordinator *workflow.Coordinator, log *slog.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, coordinator: coordinator, log: log}
}

type reservationRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerEmail   string `json:"customerEmail"`
	ReservationDate string `json:"reservationDate"`
	PartySize       int    `json:"partySize"`
	TableID         int64  `json:"tableId"`
	Notes           string `json:"notes"`
}

// parseReservationDate accepts RFC 3339 as well as the second-less form
// browser datetime-local inputs produce.
func parseReservationDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: reservation date is required", models.ErrInvalidInput)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid reservation date %q", models.ErrInvalidInput, raw)
}

func (h *ReservationHandler) decodeReservation(r *http.Request) (*models.Reservation, error) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", models.ErrInvalidInput)
	}
	if req.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", models.ErrInvalidInput)
	}
	if req.PartySize < 1 {
		return nil, fmt.Errorf("%w: party size must be at least 1", models.ErrInvalidInput)
	}
	date, err := parseReservationDate(req.ReservationDate)
	if err != nil {
		return nil, err
	}

	return &models.Reservation{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		ReservationDate: date,
		PartySize:       req.PartySize,
		TableID:         req.TableID,
		Notes:           req.Notes,
	}, nil
}

// ListReservations handles GET /api/reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservations.List(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

// GetReservation handles GET /api/reservations/{reservationId}
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reservationId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reservation, err := h.reservations.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// ListByStatus handles GET /api/reservations/status/{status}
func (h *ReservationHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.ReservationStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		respondError(w, h.log, fmt.Errorf("%w: unknown reservation status %q", models.ErrInvalidInput, status))
		return
	}

	reservations, err := h.reservations.ListByStatus(r.Context(), status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

// CreateReservation handles POST /api/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.decodeReservation(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	reservation.Status = models.ReservationPending

	if err := h.reservations.Create(r.Context(), reservation); err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("reservation created",
		"reservation_id", reservation.ID,
		"customer", reservation.CustomerName,
		"party_size", reservation.PartySize)
	writeJSON(w, http.StatusCreated, reservation)
}

// UpdateReservation handles PUT /api/reservations/{reservationId}. The
// status is not editable here; use the status endpoint so the state
// machine and table cascades apply.
func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reservationId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	current, err := h.reservations.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reservation, err := h.decodeReservation(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	reservation.ID = id
	reservation.Status = current.Status

	if err := h.reservations.Update(r.Context(), reservation); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// UpdateStatus handles PUT /api/reservations/{reservationId}/status
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reservationId")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	status, err := decodeStatus(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reservation, err := h.coordinator.ChangeReservationStatus(r.Context(), id, models.ReservationStatus(status))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("reservation status changed", "reservation_id", id, "status", status)
	writeJSON(w, http.StatusOK, reservation)
}
