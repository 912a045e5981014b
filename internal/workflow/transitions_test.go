package workflow

import (
	"errors"
	"testing"

	"github.com/plateful/restaurant-ops/internal/models"
)

func TestCheckOrderTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		wantErr error
	}{
		{name: "forward step", from: models.OrderPending, to: models.OrderConfirmed},
		{name: "skip ahead", from: models.OrderPending, to: models.OrderReady},
		{name: "backward correction", from: models.OrderServed, to: models.OrderPreparing},
		{name: "complete", from: models.OrderServed, to: models.OrderCompleted},
		{name: "cancel from pending", from: models.OrderPending, to: models.OrderCancelled},
		{name: "cancel from ready", from: models.OrderReady, to: models.OrderCancelled},
		{name: "completed is terminal", from: models.OrderCompleted, to: models.OrderPending, wantErr: models.ErrIllegalTransition},
		{name: "cancelled is terminal", from: models.OrderCancelled, to: models.OrderPreparing, wantErr: models.ErrIllegalTransition},
		{name: "no reviving a cancelled order", from: models.OrderCancelled, to: models.OrderCompleted, wantErr: models.ErrIllegalTransition},
		{name: "unknown status", from: models.OrderPending, to: models.OrderStatus("BURNED"), wantErr: models.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOrderTransition(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckOrderTransition(%s, %s) error = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestCheckReservationTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ReservationStatus
		to      models.ReservationStatus
		wantErr error
	}{
		{name: "confirm", from: models.ReservationPending, to: models.ReservationConfirmed},
		{name: "seat directly from pending", from: models.ReservationPending, to: models.ReservationSeated},
		{name: "unseat correction", from: models.ReservationSeated, to: models.ReservationConfirmed},
		{name: "complete", from: models.ReservationSeated, to: models.ReservationCompleted},
		{name: "no show", from: models.ReservationConfirmed, to: models.ReservationNoShow},
		{name: "cancel", from: models.ReservationPending, to: models.ReservationCancelled},
		{name: "completed is terminal", from: models.ReservationCompleted, to: models.ReservationSeated, wantErr: models.ErrIllegalTransition},
		{name: "cancelled is terminal", from: models.ReservationCancelled, to: models.ReservationPending, wantErr: models.ErrIllegalTransition},
		{name: "no show is terminal", from: models.ReservationNoShow, to: models.ReservationSeated, wantErr: models.ErrIllegalTransition},
		{name: "unknown status", from: models.ReservationPending, to: models.ReservationStatus("WAITLISTED"), wantErr: models.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReservationTransition(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckReservationTransition(%s, %s) error = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestCheckTableTransition(t *testing.T) {
	statuses := []models.TableStatus{
		models.TableAvailable, models.TableOccupied, models.TableReserved, models.TableMaintenance,
	}

	// Any state may move to any other; no terminal table states.
	for _, from := range statuses {
		for _, to := range statuses {
			if err := CheckTableTransition(from, to); err != nil {
				t.Errorf("CheckTableTransition(%s, %s) = %v, want nil", from, to, err)
			}
		}
	}

	if err := CheckTableTransition(models.TableAvailable, models.TableStatus("FLOODED")); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("CheckTableTransition to unknown status error = %v, want ErrInvalidInput", err)
	}
}
