package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/plateful/restaurant-ops/internal/models"
)

// NewMemoryStores returns a full in-memory store set, used when no
// DATABASE_URL is configured and throughout the tests.
func NewMemoryStores() *Stores {
	return &Stores{
		Menu:         NewMemoryMenuCatalog(),
		Tables:       NewMemoryTableStore(),
		Orders:       NewMemoryOrderStore(),
		Reservations: NewMemoryReservationStore(),
		Users:        NewMemoryUserStore(),
	}
}

// MemoryMenuCatalog implements MenuCatalog with in-memory storage.
type MemoryMenuCatalog struct {
	mu     sync.RWMutex
	items  map[int64]models.MenuItem
	nextID int64
}

// NewMemoryMenuCatalog creates an in-memory catalog seeded with a small
// starter menu so a fresh dev server is usable immediately.
func NewMemoryMenuCatalog() *MemoryMenuCatalog {
	items := map[int64]models.MenuItem{
		1: {ID: 1, Name: "Bruschetta", Description: "Grilled bread, tomato, basil", Price: 8.99, Category: "Appetizers", IsAvailable: true, PreparationTime: 10},
		2: {ID: 2, Name: "Caesar Salad", Description: "Romaine, parmesan, croutons", Price: 9.49, Category: "Salads", IsAvailable: true, PreparationTime: 8},
		3: {ID: 3, Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Price: 14.99, Category: "Main Course", IsAvailable: true, PreparationTime: 18},
		4: {ID: 4, Name: "Grilled Salmon", Description: "With seasonal vegetables", Price: 21.50, Category: "Main Course", IsAvailable: true, PreparationTime: 22},
		5: {ID: 5, Name: "Tiramisu", Description: "Espresso-soaked ladyfingers", Price: 7.25, Category: "Desserts", IsAvailable: true, PreparationTime: 5},
		6: {ID: 6, Name: "Lemonade", Description: "Fresh squeezed", Price: 4.50, Category: "Beverages", IsAvailable: true},
	}
	return &MemoryMenuCatalog{items: items, nextID: int64(len(items))}
}

func (c *MemoryMenuCatalog) List(_ context.Context) ([]models.MenuItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (c *MemoryMenuCatalog) GetByID(_ context.Context, id int64) (*models.MenuItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &item, nil
}

func (c *MemoryMenuCatalog) ListByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	all, _ := c.List(ctx)
	items := make([]models.MenuItem, 0)
	for _, item := range all {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *MemoryMenuCatalog) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	all, _ := c.List(ctx)
	items := make([]models.MenuItem, 0)
	for _, item := range all {
		if item.IsAvailable {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *MemoryMenuCatalog) Create(_ context.Context, item *models.MenuItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	item.ID = c.nextID
	c.items[item.ID] = *item
	return nil
}

func (c *MemoryMenuCatalog) Update(_ context.Context, item *models.MenuItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[item.ID]; !ok {
		return models.ErrNotFound
	}
	c.items[item.ID] = *item
	return nil
}

func (c *MemoryMenuCatalog) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(c.items, id)
	return nil
}

// MemoryTableStore implements TableStore with in-memory storage.
type MemoryTableStore struct {
	mu     sync.RWMutex
	tables map[int64]models.Table
	nextID int64
}

func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{tables: make(map[int64]models.Table)}
}

func (s *MemoryTableStore) List(_ context.Context) ([]models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

func (s *MemoryTableStore) GetByID(_ context.Context, id int64) (*models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *MemoryTableStore) ListByStatus(ctx context.Context, status models.TableStatus) ([]models.Table, error) {
	all, _ := s.List(ctx)
	tables := make([]models.Table, 0)
	for _, t := range all {
		if t.Status == status {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func (s *MemoryTableStore) ListByMinCapacity(ctx context.Context, capacity int) ([]models.Table, error) {
	all, _ := s.List(ctx)
	tables := make([]models.Table, 0)
	for _, t := range all {
		if t.Capacity >= capacity {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func (s *MemoryTableStore) Create(_ context.Context, table *models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	table.ID = s.nextID
	s.tables[table.ID] = *table
	return nil
}

func (s *MemoryTableStore) Update(_ context.Context, table *models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table.ID]; !ok {
		return models.ErrNotFound
	}
	s.tables[table.ID] = *table
	return nil
}

func (s *MemoryTableStore) UpdateStatus(_ context.Context, id int64, status models.TableStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[id]
	if !ok {
		return models.ErrNotFound
	}
	t.Status = status
	s.tables[id] = t
	return nil
}

func (s *MemoryTableStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.tables, id)
	return nil
}

// MemoryOrderStore implements OrderStore with in-memory storage.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[int64]models.Order
	nextID int64
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[int64]models.Order)}
}

func (s *MemoryOrderStore) List(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (s *MemoryOrderStore) GetByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

func (s *MemoryOrderStore) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	all, _ := s.List(ctx)
	orders := make([]models.Order, 0)
	for _, o := range all {
		if o.Status == status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (s *MemoryOrderStore) ListActiveByTable(ctx context.Context, tableID int64) ([]models.Order, error) {
	all, _ := s.List(ctx)
	orders := make([]models.Order, 0)
	for _, o := range all {
		if o.TableID == tableID && !o.Status.Terminal() {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (s *MemoryOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	order.ID = s.nextID
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryOrderStore) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *MemoryOrderStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

// MemoryReservationStore implements ReservationStore with in-memory storage.
type MemoryReservationStore struct {
	mu           sync.RWMutex
	reservations map[int64]models.Reservation
	nextID       int64
}

func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{reservations: make(map[int64]models.Reservation)}
}

func (s *MemoryReservationStore) List(_ context.Context) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservations := make([]models.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		reservations = append(reservations, r)
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

func (s *MemoryReservationStore) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryReservationStore) ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	all, _ := s.List(ctx)
	reservations := make([]models.Reservation, 0)
	for _, r := range all {
		if r.Status == status {
			reservations = append(reservations, r)
		}
	}
	return reservations, nil
}

func (s *MemoryReservationStore) ListActiveByTable(ctx context.Context, tableID int64) ([]models.Reservation, error) {
	all, _ := s.List(ctx)
	reservations := make([]models.Reservation, 0)
	for _, r := range all {
		if r.TableID == tableID && !r.Status.Terminal() {
			reservations = append(reservations, r)
		}
	}
	return reservations, nil
}

func (s *MemoryReservationStore) Create(_ context.Context, reservation *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	reservation.ID = s.nextID
	s.reservations[reservation.ID] = *reservation
	return nil
}

func (s *MemoryReservationStore) Update(_ context.Context, reservation *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; !ok {
		return models.ErrNotFound
	}
	s.reservations[reservation.ID] = *reservation
	return nil
}

func (s *MemoryReservationStore) UpdateStatus(_ context.Context, id int64, status models.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return models.ErrNotFound
	}
	r.Status = status
	s.reservations[id] = r
	return nil
}

// MemoryUserStore implements UserStore with in-memory storage.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	nextID int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]models.User)}
}

func (s *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return models.ErrInvalidInput
		}
	}

	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = *user
	return nil
}
