package pricing

import (
	"errors"
	"testing"

	"github.com/plateful/restaurant-ops/internal/models"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		quantity  int
		want      float64
		wantErr   error
	}{
		{name: "single unit", unitPrice: 12.50, quantity: 1, want: 12.50},
		{name: "multiple units", unitPrice: 12.50, quantity: 2, want: 25.00},
		{name: "zero quantity", unitPrice: 9.99, quantity: 0, want: 0},
		{name: "free item", unitPrice: 0, quantity: 3, want: 0},
		{name: "rounds to cents", unitPrice: 0.10, quantity: 3, want: 0.30},
		{name: "negative price", unitPrice: -1.00, quantity: 1, wantErr: models.ErrInvalidInput},
		{name: "negative quantity", unitPrice: 5.00, quantity: -2, wantErr: models.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LineTotal(tt.unitPrice, tt.quantity)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LineTotal() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("LineTotal() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LineTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderTotal(t *testing.T) {
	lines := []models.OrderLine{
		{MenuItemID: 1, Quantity: 2, UnitPrice: 12.50},
		{MenuItemID: 2, Quantity: 1, UnitPrice: 5.00},
	}

	total, err := OrderTotal(lines)
	if err != nil {
		t.Fatalf("OrderTotal() unexpected error = %v", err)
	}
	if total != 30.00 {
		t.Errorf("OrderTotal() = %v, want 30.00", total)
	}
}

func TestOrderTotal_Empty(t *testing.T) {
	total, err := OrderTotal(nil)
	if err != nil {
		t.Fatalf("OrderTotal() unexpected error = %v", err)
	}
	if total != 0 {
		t.Errorf("OrderTotal() = %v, want 0", total)
	}
}

func TestOrderTotal_RejectsNegativeLine(t *testing.T) {
	lines := []models.OrderLine{
		{MenuItemID: 1, Quantity: -1, UnitPrice: 12.50},
	}

	if _, err := OrderTotal(lines); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("OrderTotal() error = %v, want ErrInvalidInput", err)
	}
}

// Totals avoid the drift of repeated float addition for realistic menus.
func TestOrderTotal_RoundsAccumulatedCents(t *testing.T) {
	lines := []models.OrderLine{
		{MenuItemID: 1, Quantity: 1, UnitPrice: 0.10},
		{MenuItemID: 2, Quantity: 1, UnitPrice: 0.20},
		{MenuItemID: 3, Quantity: 1, UnitPrice: 0.30},
	}

	total, err := OrderTotal(lines)
	if err != nil {
		t.Fatalf("OrderTotal() unexpected error = %v", err)
	}
	if total != 0.60 {
		t.Errorf("OrderTotal() = %v, want 0.60", total)
	}
}
