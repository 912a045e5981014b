// Package workflow contains the status state machines for orders, tables
// and reservations, and the coordinator that applies cross-entity
// consequences of a status change.
package workflow

import (
	"fmt"

	"github.com/plateful/restaurant-ops/internal/models"
)

// CheckOrderTransition validates a status change for an order.
// COMPLETED and CANCELLED are terminal; among the non-terminal states
// staff may move freely, backward included, so mistakes can be corrected.
func CheckOrderTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown order status %q", models.ErrInvalidInput, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: order is already %s", models.ErrIllegalTransition, from)
	}
	return nil
}

// CheckReservationTransition validates a status change for a reservation.
// COMPLETED, CANCELLED and NO_SHOW are terminal; non-terminal states are
// freely interchangeable.
func CheckReservationTransition(from, to models.ReservationStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown reservation status %q", models.ErrInvalidInput, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: reservation is already %s", models.ErrIllegalTransition, from)
	}
	return nil
}

// CheckTableTransition validates a status change for a table. Staff may
// set any table to any status directly; only the value itself is checked.
func CheckTableTransition(_, to models.TableStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown table status %q", models.ErrInvalidInput, to)
	}
	return nil
}
