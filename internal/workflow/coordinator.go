package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/plateful/restaurant-ops/internal/events"
	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/pricing"
	"github.com/plateful/restaurant-ops/internal/repository"
)

// CascadeError reports a cascading update that failed after the primary
// write succeeded. Nothing is rolled back; the caller retries the failed
// step manually.
type CascadeError struct {
	Primary string // what already succeeded, e.g. "reservation marked SEATED"
	Err     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s, but table update failed: %v", e.Primary, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// CustomerInfo carries the optional customer fields of a new order.
type CustomerInfo struct {
	Name  string
	Phone string
	Notes string
}

// Coordinator is the single entry point for status-changing operations.
// It validates transitions against the state machines, applies
// cross-entity consequences, and serializes operations per entity id.
type Coordinator struct {
	stores    *repository.Stores
	publisher events.Publisher
	log       *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCoordinator creates a coordinator over the given stores.
func NewCoordinator(stores *repository.Stores, publisher events.Publisher, log *slog.Logger) *Coordinator {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Coordinator{
		stores:    stores,
		publisher: publisher,
		log:       log,
		inflight:  make(map[string]struct{}),
	}
}

// acquire marks an entity as having an operation in flight. A second
// operation on the same entity is rejected rather than queued.
func (c *Coordinator) acquire(kind string, id int64) error {
	key := fmt.Sprintf("%s/%d", kind, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return fmt.Errorf("%w: %s %d", models.ErrConcurrentModification, kind, id)
	}
	c.inflight[key] = struct{}{}
	return nil
}

func (c *Coordinator) release(kind string, id int64) {
	key := fmt.Sprintf("%s/%d", kind, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

func (c *Coordinator) publish(ctx context.Context, entity string, id int64, from, to string) {
	err := c.publisher.PublishStatusChange(ctx, events.StatusEvent{
		Entity:    entity,
		EntityID:  id,
		OldStatus: from,
		NewStatus: to,
	})
	if err != nil {
		// Event delivery is best effort; the write already happened.
		c.log.Warn("status event not delivered", "entity", entity, "id", id, "error", err)
	}
}

// CreateOrder validates the target table, prices the draft lines and
// persists a new PENDING order. Creating an order does not change the
// table's status; seating is driven by reservations or direct staff
// action.
func (c *Coordinator) CreateOrder(ctx context.Context, tableID int64, lines []models.OrderLine, info CustomerInfo) (*models.Order, error) {
	if tableID == 0 {
		return nil, fmt.Errorf("%w: table is required", models.ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: line quantity must be at least 1", models.ErrInvalidInput)
		}
	}

	table, err := c.stores.Tables.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableMaintenance {
		return nil, fmt.Errorf("%w: table %d is under maintenance", models.ErrInvalidInput, table.TableNumber)
	}

	// Totals come from the pricing engine only; anything a client sent is
	// ignored.
	total, err := pricing.OrderTotal(lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		TableID:       tableID,
		CustomerName:  info.Name,
		CustomerPhone: info.Phone,
		Notes:         info.Notes,
		OrderItems:    lines,
		TotalAmount:   total,
		Status:        models.OrderPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := c.stores.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	c.publish(ctx, "order", order.ID, "", string(order.Status))
	c.log.Info("order created", "order_id", order.ID, "table_id", tableID, "total", total)
	return order, nil
}

// ChangeOrderStatus applies a status change to an order after validating
// it against the order state machine.
func (c *Coordinator) ChangeOrderStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus) (*models.Order, error) {
	if err := c.acquire("order", orderID); err != nil {
		return nil, err
	}
	defer c.release("order", orderID)

	order, err := c.stores.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CheckOrderTransition(order.Status, newStatus); err != nil {
		return nil, err
	}

	if err := c.stores.Orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}

	c.publish(ctx, "order", orderID, string(order.Status), string(newStatus))
	order.Status = newStatus
	return order, nil
}

// ChangeTableStatus applies a direct staff status change to a table.
// Manual overrides are intentional: no cascading effect on orders or
// reservations.
func (c *Coordinator) ChangeTableStatus(ctx context.Context, tableID int64, newStatus models.TableStatus) (*models.Table, error) {
	if err := c.acquire("table", tableID); err != nil {
		return nil, err
	}
	defer c.release("table", tableID)

	table, err := c.stores.Tables.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := CheckTableTransition(table.Status, newStatus); err != nil {
		return nil, err
	}

	if err := c.stores.Tables.UpdateStatus(ctx, tableID, newStatus); err != nil {
		return nil, err
	}

	c.publish(ctx, "table", tableID, string(table.Status), string(newStatus))
	table.Status = newStatus
	return table, nil
}

// ChangeReservationStatus applies a status change to a reservation and
// drives the linked table: SEATED occupies it, and leaving SEATED for a
// terminal state frees it again unless another active order or
// reservation still claims it. The table update is a separate sequential
// write; if it fails the reservation change stands and a CascadeError is
// returned.
func (c *Coordinator) ChangeReservationStatus(ctx context.Context, reservationID int64, newStatus models.ReservationStatus) (*models.Reservation, error) {
	if err := c.acquire("reservation", reservationID); err != nil {
		return nil, err
	}
	defer c.release("reservation", reservationID)

	reservation, err := c.stores.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := CheckReservationTransition(reservation.Status, newStatus); err != nil {
		return nil, err
	}

	if err := c.stores.Reservations.UpdateStatus(ctx, reservationID, newStatus); err != nil {
		return nil, err
	}
	c.publish(ctx, "reservation", reservationID, string(reservation.Status), string(newStatus))

	oldStatus := reservation.Status
	reservation.Status = newStatus

	if reservation.TableID == 0 {
		return reservation, nil
	}

	switch {
	case newStatus == models.ReservationSeated:
		if err := c.stores.Tables.UpdateStatus(ctx, reservation.TableID, models.TableOccupied); err != nil {
			return reservation, &CascadeError{Primary: "reservation marked SEATED", Err: err}
		}
		c.publish(ctx, "table", reservation.TableID, "", string(models.TableOccupied))

	case oldStatus == models.ReservationSeated && newStatus.Terminal():
		free, err := c.tableUnclaimed(ctx, reservation.TableID, reservationID)
		if err != nil {
			return reservation, &CascadeError{Primary: fmt.Sprintf("reservation marked %s", newStatus), Err: err}
		}
		if !free {
			c.log.Info("table still claimed, leaving status unchanged",
				"table_id", reservation.TableID, "reservation_id", reservationID)
			return reservation, nil
		}
		if err := c.stores.Tables.UpdateStatus(ctx, reservation.TableID, models.TableAvailable); err != nil {
			return reservation, &CascadeError{Primary: fmt.Sprintf("reservation marked %s", newStatus), Err: err}
		}
		c.publish(ctx, "table", reservation.TableID, "", string(models.TableAvailable))
	}

	return reservation, nil
}

// tableUnclaimed reports whether no non-terminal order and no other
// active reservation references the table.
func (c *Coordinator) tableUnclaimed(ctx context.Context, tableID, excludeReservationID int64) (bool, error) {
	orders, err := c.stores.Orders.ListActiveByTable(ctx, tableID)
	if err != nil {
		return false, err
	}
	if len(orders) > 0 {
		return false, nil
	}

	reservations, err := c.stores.Reservations.ListActiveByTable(ctx, tableID)
	if err != nil {
		return false, err
	}
	for _, r := range reservations {
		if r.ID != excludeReservationID {
			return false, nil
		}
	}
	return true, nil
}
