// Package pricing is the single source of truth for order totals. Callers
// never set totals directly; they are always derived here.
package pricing

import (
	"fmt"
	"math"

	"github.com/plateful/restaurant-ops/internal/models"
)

// round truncates x to currency precision (2 decimal places).
func round(x float64) float64 {
	return math.Round(x*100) / 100
}

// LineTotal computes unitPrice * quantity rounded to cents.
func LineTotal(unitPrice float64, quantity int) (float64, error) {
	if unitPrice < 0 {
		return 0, fmt.Errorf("%w: unit price must not be negative", models.ErrInvalidInput)
	}
	if quantity < 0 {
		return 0, fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidInput)
	}
	return round(unitPrice * float64(quantity)), nil
}

// OrderTotal sums the line totals of all lines, recomputing each from its
// snapshot unit price and quantity.
func OrderTotal(lines []models.OrderLine) (float64, error) {
	var total float64
	for _, line := range lines {
		lt, err := LineTotal(line.UnitPrice, line.Quantity)
		if err != nil {
			return 0, err
		}
		total += lt
	}
	return round(total), nil
}
