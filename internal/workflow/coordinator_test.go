package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/plateful/restaurant-ops/internal/events"
	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.StatusEvent
}

func (p *recordingPublisher) PublishStatusChange(_ context.Context, ev events.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) byEntity(entity string) []events.StatusEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.StatusEvent, 0)
	for _, ev := range p.events {
		if ev.Entity == entity {
			out = append(out, ev)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(t *testing.T) (*Coordinator, *repository.Stores, *recordingPublisher) {
	t.Helper()
	stores := repository.NewMemoryStores()
	pub := &recordingPublisher{}
	return NewCoordinator(stores, pub, testLogger()), stores, pub
}

func mustCreateTable(t *testing.T, stores *repository.Stores, number int, status models.TableStatus) *models.Table {
	t.Helper()
	table := &models.Table{TableNumber: number, Capacity: 4, Status: status}
	if err := stores.Tables.Create(context.Background(), table); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return table
}

func draftLines() []models.OrderLine {
	return []models.OrderLine{
		{MenuItemID: 1, Quantity: 2, UnitPrice: 12.50, TotalPrice: 25.00},
		{MenuItemID: 2, Quantity: 1, UnitPrice: 5.00, TotalPrice: 5.00, Notes: "no onions"},
	}
}

func TestCreateOrder(t *testing.T) {
	c, stores, pub := newTestCoordinator(t)
	table := mustCreateTable(t, stores, 4, models.TableAvailable)

	order, err := c.CreateOrder(context.Background(), table.ID, draftLines(), CustomerInfo{Name: "Dana"})
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}

	if order.Status != models.OrderPending {
		t.Errorf("status = %s, want PENDING", order.Status)
	}
	if order.TotalAmount != 30.00 {
		t.Errorf("total = %v, want 30.00", order.TotalAmount)
	}
	if len(order.OrderItems) != 2 {
		t.Fatalf("got %d lines, want 2", len(order.OrderItems))
	}
	if order.OrderItems[0].TotalPrice != 25.00 || order.OrderItems[1].TotalPrice != 5.00 {
		t.Errorf("line totals = %v, %v, want 25.00, 5.00",
			order.OrderItems[0].TotalPrice, order.OrderItems[1].TotalPrice)
	}

	// Creation alone must not occupy the table.
	got, err := stores.Tables.GetByID(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if got.Status != models.TableAvailable {
		t.Errorf("table status = %s, want AVAILABLE", got.Status)
	}

	if evs := pub.byEntity("order"); len(evs) != 1 || evs[0].NewStatus != "PENDING" {
		t.Errorf("order events = %v, want one PENDING event", evs)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	c, stores, _ := newTestCoordinator(t)
	available := mustCreateTable(t, stores, 1, models.TableAvailable)
	maintenance := mustCreateTable(t, stores, 2, models.TableMaintenance)

	tests := []struct {
		name    string
		tableID int64
		lines   []models.OrderLine
		wantErr error
	}{
		{name: "missing table", tableID: 0, lines: draftLines(), wantErr: models.ErrInvalidInput},
		{name: "unknown table", tableID: 999, lines: draftLines(), wantErr: models.ErrNotFound},
		{name: "maintenance table", tableID: maintenance.ID, lines: draftLines(), wantErr: models.ErrInvalidInput},
		{name: "no lines", tableID: available.ID, lines: nil, wantErr: models.ErrEmptyCart},
		{
			name:    "zero quantity line",
			tableID: available.ID,
			lines:   []models.OrderLine{{MenuItemID: 1, Quantity: 0, UnitPrice: 5.00}},
			wantErr: models.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.CreateOrder(context.Background(), tt.tableID, tt.lines, CustomerInfo{}); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateOrder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestChangeOrderStatus_TerminalStaysTerminal(t *testing.T) {
	c, stores, _ := newTestCoordinator(t)
	table := mustCreateTable(t, stores, 3, models.TableOccupied)

	order, err := c.CreateOrder(context.Background(), table.ID, draftLines(), CustomerInfo{})
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}

	if _, err := c.ChangeOrderStatus(context.Background(), order.ID, models.OrderCancelled); err != nil {
		t.Fatalf("cancel: unexpected error = %v", err)
	}

	_, err = c.ChangeOrderStatus(context.Background(), order.ID, models.OrderPreparing)
	if !errors.Is(err, models.ErrIllegalTransition) {
		t.Errorf("ChangeOrderStatus() error = %v, want ErrIllegalTransition", err)
	}

	// The failed call must leave the order untouched.
	got, err := stores.Orders.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != models.OrderCancelled {
		t.Errorf("order status = %s, want CANCELLED", got.Status)
	}
}

func TestChangeOrderStatus_BackwardCorrection(t *testing.T) {
	c, stores, _ := newTestCoordinator(t)
	table := mustCreateTable(t, stores, 5, models.TableOccupied)

	order, err := c.CreateOrder(context.Background(), table.ID, draftLines(), CustomerInfo{})
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}

	for _, status := range []models.OrderStatus{models.OrderServed, models.OrderPreparing} {
		if _, err := c.ChangeOrderStatus(context.Background(), order.ID, status); err != nil {
			t.Fatalf("ChangeOrderStatus(%s) unexpected error = %v", status, err)
		}
	}
}

func TestChangeReservationStatus_SeatOccupiesTable(t *testing.T) {
	c, stores, pub := newTestCoordinator(t)
	table := mustCreateTable(t, stores, 7, models.TableReserved)

	reservation := &models.Reservation{
		CustomerName:    "Priya",
		CustomerPhone:   "555-0101",
		ReservationDate: time.Now().Add(time.Hour),
		PartySize:       4,
		TableID:         table.ID,
		Status:          models.ReservationPending,
	}
	if err := stores.Reservations.Create(context.Background(), reservation); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	if _, err := c.ChangeReservationStatus(context.Background(), reservation.ID, models.ReservationSeated); err != nil {
		t.Fatalf("seat: unexpected error = %v", err)
	}

	got, err := stores.Tables.GetByID(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if got.Status != models.TableOccupied {
		t.Errorf("table status = %s, want OCCUPIED after seating", got.Status)
	}

	// No-show after seating frees the table again.
	if _, err := c.ChangeReservationStatus(context.Background(), reservation.ID, models.ReservationNoShow); err != nil {
		t.Fatalf("no-show: unexpected error = %v", err)
	}
	got, err = stores.Tables.GetByID(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if got.Status != models.TableAvailable {
		t.Errorf("table status = %s, want AVAILABLE after no-show", got.Status)
	}

	if evs := pub.byEntity("table"); len(evs) != 2 {
		t.Errorf("got %d table events, want 2 (occupy, free)", len(evs))
	}
}

func TestChangeReservationStatus_TableStillClaimed(t *testing.T) {
	c, stores, _ := newTestCoordinator(t)
	table := mustCreateTable(t, stores, 8, models.TableOccupied)

	reservation := &models.Reservation{
		CustomerName:    "Ben",
		CustomerPhone:   "555-0102",
		ReservationDate: time.Now(),
		PartySize:       2,
		TableID:         table.ID,
		Status:          models.ReservationSeated,
	}
	if err := stores.Reservations.Create(context.Background(), reservation); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	// An open order keeps the table claimed.
	if _, err := c.CreateOrder(context.Background(), table.ID, draftLines(), CustomerInfo{}); err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}

	if _, err := c.ChangeReservationStatus(context.Background(), reservation.ID, models.ReservationCompleted); err != nil {
		t.Fatalf("complete: unexpected error = %v", err)
	}

	got, err := stores.Tables.GetByID(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if got.Status != models.TableOccupied {
		t.Errorf("table status = %s, want OCCUPIED while an order is open", got.Status)
	}
}

func TestChangeReservationStatus_NoLinkedTable(t *testing.T) {
	c, stores, pub := newTestCoordinator(t)

	reservation := &models.Reservation{
		CustomerName:    "Ana",
		CustomerPhone:   "555-0103",
		ReservationDate: time.Now(),
		PartySize:       3,
		Status:          models.ReservationPending,
	}
	if err := stores.Reservations.Create(context.Background(), reservation); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	if _, err := c.ChangeReservationStatus(context.Background(), reservation.ID, models.ReservationSeated); err != nil {
		t.Fatalf("seat: unexpected error = %v", err)
	}

	if evs := pub.byEntity("table"); len(evs) != 0 {
		t.Errorf("got %d table events, want 0 for an unlinked reservation", len(evs))
	}
}

func TestChangeReservationStatus_Terminal(t *testing.T) {
	c, stores, _ := newTestCoordinator(t)

	reservation := &models.Reservation{
		CustomerName:    "Kim",
		CustomerPhone:   "555-0104",
		ReservationDate: time.Now(),
		PartySize:       2,
		Status:          models.ReservationCancelled,
	}
	if err := stores.Reservations.Create(context.Background(), reservation); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	_, err := c.ChangeReservationStatus(context.Background(), reservation.ID, models.ReservationSeated)
	if !errors.Is(err, models.ErrIllegalTransition) {
		t.Errorf("ChangeReservationStatus() error = %v, want ErrIllegalTransition", err)
	}
}

func TestChangeTableStatus(t *testing.T) {
	c, stores, _ := newTestCoordinator(t)
	table := mustCreateTable(t, stores, 9, models.TableAvailable)

	updated, err := c.ChangeTableStatus(context.Background(), table.ID, models.TableMaintenance)
	if err != nil {
		t.Fatalf("ChangeTableStatus() unexpected error = %v", err)
	}
	if updated.Status != models.TableMaintenance {
		t.Errorf("status = %s, want MAINTENANCE", updated.Status)
	}

	if _, err := c.ChangeTableStatus(context.Background(), table.ID, models.TableStatus("BROKEN")); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("ChangeTableStatus() error = %v, want ErrInvalidInput", err)
	}

	if _, err := c.ChangeTableStatus(context.Background(), 999, models.TableAvailable); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ChangeTableStatus() error = %v, want ErrNotFound", err)
	}
}

func TestInflightGuard(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	if err := c.acquire("order", 1); err != nil {
		t.Fatalf("first acquire: unexpected error = %v", err)
	}

	if err := c.acquire("order", 1); !errors.Is(err, models.ErrConcurrentModification) {
		t.Errorf("second acquire error = %v, want ErrConcurrentModification", err)
	}

	// Other entities are unaffected.
	if err := c.acquire("order", 2); err != nil {
		t.Errorf("acquire on other id: unexpected error = %v", err)
	}
	if err := c.acquire("reservation", 1); err != nil {
		t.Errorf("acquire on other kind: unexpected error = %v", err)
	}

	c.release("order", 1)
	if err := c.acquire("order", 1); err != nil {
		t.Errorf("acquire after release: unexpected error = %v", err)
	}
}

func TestCascadeErrorReportsPartialSuccess(t *testing.T) {
	err := &CascadeError{Primary: "reservation marked SEATED", Err: models.ErrPersistence}

	if !errors.Is(err, models.ErrPersistence) {
		t.Errorf("CascadeError should unwrap to its cause")
	}
	want := "reservation marked SEATED, but table update failed: persistence failure"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
