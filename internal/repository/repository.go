// Package repository defines the store interfaces the core depends on,
// with an in-memory implementation for development and tests and a
// Postgres implementation for deployment.
//
// All implementations return models.ErrNotFound when an id does not
// resolve; infrastructure failures are wrapped in models.ErrPersistence.
package repository

import (
	"context"

	"github.com/plateful/restaurant-ops/internal/models"
)

// MenuCatalog provides access to menu items.
type MenuCatalog interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)
	ListByCategory(ctx context.Context, category string) ([]models.MenuItem, error)
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

// TableStore provides access to dining tables.
type TableStore interface {
	List(ctx context.Context) ([]models.Table, error)
	GetByID(ctx context.Context, id int64) (*models.Table, error)
	ListByStatus(ctx context.Context, status models.TableStatus) ([]models.Table, error)
	ListByMinCapacity(ctx context.Context, capacity int) ([]models.Table, error)
	Create(ctx context.Context, table *models.Table) error
	Update(ctx context.Context, table *models.Table) error
	UpdateStatus(ctx context.Context, id int64, status models.TableStatus) error
	Delete(ctx context.Context, id int64) error
}

// OrderStore provides access to orders. Orders are immutable after
// creation except for their status.
type OrderStore interface {
	List(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	// ListActiveByTable returns orders on the table whose status is not
	// terminal.
	ListActiveByTable(ctx context.Context, tableID int64) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
	Delete(ctx context.Context, id int64) error
}

// ReservationStore provides access to reservations.
type ReservationStore interface {
	List(ctx context.Context) ([]models.Reservation, error)
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error)
	// ListActiveByTable returns reservations linked to the table whose
	// status is not terminal.
	ListActiveByTable(ctx context.Context, tableID int64) ([]models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	Update(ctx context.Context, reservation *models.Reservation) error
	UpdateStatus(ctx context.Context, id int64, status models.ReservationStatus) error
}

// UserStore provides access to staff accounts.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Stores bundles all store interfaces for wiring.
type Stores struct {
	Menu         MenuCatalog
	Tables       TableStore
	Orders       OrderStore
	Reservations ReservationStore
	Users        UserStore
}
