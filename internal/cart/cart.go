// Package cart accumulates menu-item selections into an order draft while
// staff compose an order. It holds no external state and never contacts
// the store; resolution against the catalog happens only at draft time.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/pricing"
)

// Catalog resolves menu-item ids to their current definition so the draft
// can snapshot unit prices. repository.MenuCatalog satisfies it.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)
}

type entry struct {
	quantity int
	note     string
}

// Cart maps menu-item ids to a quantity and note while an order is being
// composed. The zero value is not usable; call New.
type Cart struct {
	entries map[int64]*entry
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{entries: make(map[int64]*entry)}
}

// SetQuantity upserts the quantity for a menu item. Zero removes the
// entry, any existing note included; a negative quantity is rejected.
func (c *Cart) SetQuantity(menuItemID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidInput)
	}
	if quantity == 0 {
		delete(c.entries, menuItemID)
		return nil
	}
	if e, ok := c.entries[menuItemID]; ok {
		e.quantity = quantity
		return nil
	}
	c.entries[menuItemID] = &entry{quantity: quantity}
	return nil
}

// SetNote upserts the free-text note for a menu item. A note on an item
// without a quantity entry creates one with quantity 1, so a note-only
// touch still adds the item.
func (c *Cart) SetNote(menuItemID int64, note string) {
	if e, ok := c.entries[menuItemID]; ok {
		e.note = note
		return
	}
	c.entries[menuItemID] = &entry{quantity: 1, note: note}
}

// Len returns the number of distinct menu items in the cart.
func (c *Cart) Len() int {
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cart) Clear() {
	c.entries = make(map[int64]*entry)
}

// ToOrderDraft resolves every entry against the catalog and produces the
// order lines used at submission, unit prices snapshotted from the
// catalog's current state. Lines are ordered by menu-item id so the draft
// does not depend on the order items were touched in.
func (c *Cart) ToOrderDraft(ctx context.Context, catalog Catalog) ([]models.OrderLine, error) {
	if len(c.entries) == 0 {
		return nil, models.ErrEmptyCart
	}

	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]models.OrderLine, 0, len(ids))
	for _, id := range ids {
		item, err := catalog.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", models.ErrUnknownMenuItem, id)
			}
			return nil, err
		}

		e := c.entries[id]
		lineTotal, err := pricing.LineTotal(item.Price, e.quantity)
		if err != nil {
			return nil, err
		}

		lines = append(lines, models.OrderLine{
			MenuItemID: id,
			Quantity:   e.quantity,
			UnitPrice:  item.Price,
			TotalPrice: lineTotal,
			Notes:      e.note,
		})
	}

	return lines, nil
}
