package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/plateful/restaurant-ops/internal/events"
	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
	"github.com/plateful/restaurant-ops/internal/workflow"
	"github.com/plateful/restaurant-ops/pkg/logger"
)

func newReservationRouter(t *testing.T) (*chi.Mux, *repository.Stores) {
	t.Helper()

	stores := repository.NewMemoryStores()
	log := logger.New("error")
	coordinator := workflow.NewCoordinator(stores, events.Noop{}, log)
	handler := NewReservationHandler(stores.Reservations, coordinator, log)

	r := chi.NewRouter()
	r.Get("/api/reservations", handler.ListReservations)
	r.Get("/api/reservations/status/{status}", handler.ListByStatus)
	r.Get("/api/reservations/{reservationId}", handler.GetReservation)
	r.Post("/api/reservations", handler.CreateReservation)
	r.Put("/api/reservations/{reservationId}", handler.UpdateReservation)
	r.Put("/api/reservations/{reservationId}/status", handler.UpdateStatus)
	return r, stores
}

func TestCreateReservation(t *testing.T) {
	r, _ := newReservationRouter(t)

	// datetime-local form, no seconds and no zone.
	body := `{
		"customerName": "Priya",
		"customerPhone": "555-0101",
		"reservationDate": "2026-09-12T19:30",
		"partySize": 4
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var reservation models.Reservation
	if err := json.NewDecoder(w.Body).Decode(&reservation); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reservation.Status != models.ReservationPending {
		t.Errorf("expected status PENDING, got %s", reservation.Status)
	}
	if reservation.ReservationDate.Hour() != 19 || reservation.ReservationDate.Minute() != 30 {
		t.Errorf("unexpected reservation time: %v", reservation.ReservationDate)
	}
	if reservation.TableID != 0 {
		t.Errorf("expected no table link, got %d", reservation.TableID)
	}
}

func TestCreateReservation_Validation(t *testing.T) {
	r, _ := newReservationRouter(t)

	testCases := []struct {
		name string
		body string
	}{
		{"missing name", `{"reservationDate": "2026-09-12T19:30", "partySize": 2}`},
		{"missing date", `{"customerName": "Priya", "partySize": 2}`},
		{"bad date", `{"customerName": "Priya", "reservationDate": "next friday", "partySize": 2}`},
		{"zero party", `{"customerName": "Priya", "reservationDate": "2026-09-12T19:30", "partySize": 0}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestSeatReservation_OccupiesTable(t *testing.T) {
	r, stores := newReservationRouter(t)

	table := &models.Table{TableNumber: 3, Capacity: 4, Status: models.TableReserved}
	if err := stores.Tables.Create(context.Background(), table); err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}

	body := `{
		"customerName": "Priya",
		"reservationDate": "2026-09-12T19:30",
		"partySize": 4,
		"tableId": 1
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to create reservation: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/reservations/1/status", strings.NewReader(`"SEATED"`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	got, err := stores.Tables.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("failed to fetch table: %v", err)
	}
	if got.Status != models.TableOccupied {
		t.Errorf("expected table OCCUPIED after seating, got %s", got.Status)
	}

	// Guests leave without ordering; the table frees up again.
	req = httptest.NewRequest(http.MethodPut, "/api/reservations/1/status", strings.NewReader(`"COMPLETED"`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	got, err = stores.Tables.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("failed to fetch table: %v", err)
	}
	if got.Status != models.TableAvailable {
		t.Errorf("expected table AVAILABLE after completion, got %s", got.Status)
	}
}

func TestReservationStatus_TerminalIsFinal(t *testing.T) {
	r, _ := newReservationRouter(t)

	body := `{"customerName": "Priya", "reservationDate": "2026-09-12T19:30", "partySize": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to create reservation: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/reservations/1/status", strings.NewReader(`"NO_SHOW"`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/reservations/1/status", strings.NewReader(`"CONFIRMED"`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for transition out of NO_SHOW, got %d", w.Code)
	}
}

func TestUpdateReservation_StatusNotEditable(t *testing.T) {
	r, _ := newReservationRouter(t)

	body := `{"customerName": "Priya", "reservationDate": "2026-09-12T19:30", "partySize": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to create reservation: %d", w.Code)
	}

	update := `{"customerName": "Priya S", "reservationDate": "2026-09-12T20:00", "partySize": 3}`
	req = httptest.NewRequest(http.MethodPut, "/api/reservations/1", strings.NewReader(update))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var reservation models.Reservation
	if err := json.NewDecoder(w.Body).Decode(&reservation); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reservation.CustomerName != "Priya S" {
		t.Errorf("expected updated name, got %s", reservation.CustomerName)
	}
	if reservation.PartySize != 3 {
		t.Errorf("expected party size 3, got %d", reservation.PartySize)
	}
	if reservation.Status != models.ReservationPending {
		t.Errorf("expected status to remain PENDING, got %s", reservation.Status)
	}
}

func TestListReservationsByStatus(t *testing.T) {
	r, _ := newReservationRouter(t)

	for _, name := range []string{"Priya", "Marcus"} {
		body := `{"customerName": "` + name + `", "reservationDate": "2026-09-12T19:30", "partySize": 2}`
		req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("failed to create reservation: %d", w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPut, "/api/reservations/1/status", strings.NewReader(`"CONFIRMED"`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("failed to confirm reservation: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reservations/status/CONFIRMED", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var reservations []models.Reservation
	if err := json.NewDecoder(w.Body).Decode(&reservations); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(reservations) != 1 || reservations[0].CustomerName != "Priya" {
		t.Errorf("expected only Priya's reservation, got %+v", reservations)
	}
}
