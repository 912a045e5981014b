package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/restaurant-ops/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS menu_items (
	id               BIGSERIAL PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	price            DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	category         TEXT NOT NULL,
	is_available     BOOLEAN NOT NULL DEFAULT TRUE,
	preparation_time INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS restaurant_tables (
	id           BIGSERIAL PRIMARY KEY,
	table_number INT NOT NULL UNIQUE,
	capacity     INT NOT NULL CHECK (capacity >= 1),
	location     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'AVAILABLE'
);

CREATE TABLE IF NOT EXISTS orders (
	id             BIGSERIAL PRIMARY KEY,
	table_id       BIGINT NOT NULL REFERENCES restaurant_tables(id),
	customer_name  TEXT NOT NULL DEFAULT '',
	customer_phone TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	total_amount   DOUBLE PRECISION NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	id           BIGSERIAL PRIMARY KEY,
	order_id     BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	menu_item_id BIGINT NOT NULL,
	quantity     INT NOT NULL CHECK (quantity >= 1),
	unit_price   DOUBLE PRECISION NOT NULL,
	total_price  DOUBLE PRECISION NOT NULL,
	notes        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS reservations (
	id               BIGSERIAL PRIMARY KEY,
	customer_name    TEXT NOT NULL,
	customer_phone   TEXT NOT NULL,
	customer_email   TEXT NOT NULL DEFAULT '',
	reservation_date TIMESTAMPTZ NOT NULL,
	party_size       INT NOT NULL CHECK (party_size >= 1),
	table_id         BIGINT REFERENCES restaurant_tables(id),
	notes            TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'PENDING'
);

CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	roles         TEXT[] NOT NULL
);
`

// Postgres wraps a pgx connection pool and produces store implementations
// backed by it.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool against url and verifies the connection.
func Connect(ctx context.Context, url string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Bootstrap creates the schema if it does not exist yet.
func (p *Postgres) Bootstrap(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Stores returns the full store set backed by this pool.
func (p *Postgres) Stores() *Stores {
	return &Stores{
		Menu:         &PostgresMenuCatalog{pool: p.pool},
		Tables:       &PostgresTableStore{pool: p.pool},
		Orders:       &PostgresOrderStore{pool: p.pool},
		Reservations: &PostgresReservationStore{pool: p.pool},
		Users:        &PostgresUserStore{pool: p.pool},
	}
}

// storeErr wraps a driver failure as a persistence error, preserving the
// cause for errors.Is/As.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrPersistence, err)
}

// PostgresMenuCatalog implements MenuCatalog on Postgres.
type PostgresMenuCatalog struct {
	pool *pgxpool.Pool
}

const menuColumns = "id, name, description, price, category, is_available, preparation_time"

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var item models.MenuItem
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.IsAvailable, &item.PreparationTime)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *PostgresMenuCatalog) list(ctx context.Context, query string, args ...any) ([]models.MenuItem, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list menu items", err)
	}
	defer rows.Close()

	items := make([]models.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, storeErr("scan menu item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list menu items", err)
	}
	return items, nil
}

func (c *PostgresMenuCatalog) List(ctx context.Context) ([]models.MenuItem, error) {
	return c.list(ctx, "SELECT "+menuColumns+" FROM menu_items ORDER BY id")
}

func (c *PostgresMenuCatalog) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := scanMenuItem(c.pool.QueryRow(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storeErr("get menu item", err)
	}
	return item, nil
}

func (c *PostgresMenuCatalog) ListByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	return c.list(ctx, "SELECT "+menuColumns+" FROM menu_items WHERE category = $1 ORDER BY id", category)
}

func (c *PostgresMenuCatalog) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	return c.list(ctx, "SELECT "+menuColumns+" FROM menu_items WHERE is_available ORDER BY id")
}

func (c *PostgresMenuCatalog) Create(ctx context.Context, item *models.MenuItem) error {
	err := c.pool.QueryRow(ctx,
		`INSERT INTO menu_items (name, description, price, category, is_available, preparation_time)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.Name, item.Description, item.Price, item.Category, item.IsAvailable, item.PreparationTime,
	).Scan(&item.ID)
	if err != nil {
		return storeErr("create menu item", err)
	}
	return nil
}

func (c *PostgresMenuCatalog) Update(ctx context.Context, item *models.MenuItem) error {
	tag, err := c.pool.Exec(ctx,
		`UPDATE menu_items
		 SET name = $2, description = $3, price = $4, category = $5, is_available = $6, preparation_time = $7
		 WHERE id = $1`,
		item.ID, item.Name, item.Description, item.Price, item.Category, item.IsAvailable, item.PreparationTime)
	if err != nil {
		return storeErr("update menu item", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (c *PostgresMenuCatalog) Delete(ctx context.Context, id int64) error {
	tag, err := c.pool.Exec(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return storeErr("delete menu item", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PostgresTableStore implements TableStore on Postgres.
type PostgresTableStore struct {
	pool *pgxpool.Pool
}

const tableColumns = "id, table_number, capacity, location, status"

func (s *PostgresTableStore) list(ctx context.Context, query string, args ...any) ([]models.Table, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list tables", err)
	}
	defer rows.Close()

	tables := make([]models.Table, 0)
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Location, &t.Status); err != nil {
			return nil, storeErr("scan table", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list tables", err)
	}
	return tables, nil
}

func (s *PostgresTableStore) List(ctx context.Context) ([]models.Table, error) {
	return s.list(ctx, "SELECT "+tableColumns+" FROM restaurant_tables ORDER BY table_number")
}

func (s *PostgresTableStore) GetByID(ctx context.Context, id int64) (*models.Table, error) {
	var t models.Table
	err := s.pool.QueryRow(ctx,
		"SELECT "+tableColumns+" FROM restaurant_tables WHERE id = $1", id,
	).Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Location, &t.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storeErr("get table", err)
	}
	return &t, nil
}

func (s *PostgresTableStore) ListByStatus(ctx context.Context, status models.TableStatus) ([]models.Table, error) {
	return s.list(ctx, "SELECT "+tableColumns+" FROM restaurant_tables WHERE status = $1 ORDER BY table_number", string(status))
}

func (s *PostgresTableStore) ListByMinCapacity(ctx context.Context, capacity int) ([]models.Table, error) {
	return s.list(ctx, "SELECT "+tableColumns+" FROM restaurant_tables WHERE capacity >= $1 ORDER BY table_number", capacity)
}

func (s *PostgresTableStore) Create(ctx context.Context, table *models.Table) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO restaurant_tables (table_number, capacity, location, status)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		table.TableNumber, table.Capacity, table.Location, string(table.Status),
	).Scan(&table.ID)
	if err != nil {
		return storeErr("create table", err)
	}
	return nil
}

func (s *PostgresTableStore) Update(ctx context.Context, table *models.Table) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE restaurant_tables
		 SET table_number = $2, capacity = $3, location = $4, status = $5
		 WHERE id = $1`,
		table.ID, table.TableNumber, table.Capacity, table.Location, string(table.Status))
	if err != nil {
		return storeErr("update table", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresTableStore) UpdateStatus(ctx context.Context, id int64, status models.TableStatus) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE restaurant_tables SET status = $2 WHERE id = $1", id, string(status))
	if err != nil {
		return storeErr("update table status", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresTableStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM restaurant_tables WHERE id = $1", id)
	if err != nil {
		return storeErr("delete table", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PostgresOrderStore implements OrderStore on Postgres. Order lines live
// in order_items and are loaded with their order.
type PostgresOrderStore struct {
	pool *pgxpool.Pool
}

const orderColumns = "id, table_id, customer_name, customer_phone, notes, total_amount, status, created_at"

func (s *PostgresOrderStore) loadLines(ctx context.Context, order *models.Order) error {
	rows, err := s.pool.Query(ctx,
		`SELECT menu_item_id, quantity, unit_price, total_price, notes
		 FROM order_items WHERE order_id = $1 ORDER BY menu_item_id`, order.ID)
	if err != nil {
		return storeErr("load order items", err)
	}
	defer rows.Close()

	order.OrderItems = make([]models.OrderLine, 0)
	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.MenuItemID, &line.Quantity, &line.UnitPrice, &line.TotalPrice, &line.Notes); err != nil {
			return storeErr("scan order item", err)
		}
		order.OrderItems = append(order.OrderItems, line)
	}
	return rows.Err()
}

func (s *PostgresOrderStore) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.TableID, &o.CustomerName, &o.CustomerPhone,
			&o.Notes, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, storeErr("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list orders", err)
	}

	for i := range orders {
		if err := s.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresOrderStore) List(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY id")
}

func (s *PostgresOrderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id,
	).Scan(&o.ID, &o.TableID, &o.CustomerName, &o.CustomerPhone,
		&o.Notes, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storeErr("get order", err)
	}
	if err := s.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresOrderStore) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return s.list(ctx, "SELECT "+orderColumns+" FROM orders WHERE status = $1 ORDER BY id", string(status))
}

func (s *PostgresOrderStore) ListActiveByTable(ctx context.Context, tableID int64) ([]models.Order, error) {
	return s.list(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE table_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED') ORDER BY id",
		tableID)
}

func (s *PostgresOrderStore) Create(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin order transaction", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (table_id, customer_name, customer_phone, notes, total_amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		order.TableID, order.CustomerName, order.CustomerPhone, order.Notes,
		order.TotalAmount, string(order.Status), order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return storeErr("insert order", err)
	}

	for _, line := range order.OrderItems {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, total_price, notes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, line.MenuItemID, line.Quantity, line.UnitPrice, line.TotalPrice, line.Notes)
		if err != nil {
			return storeErr("insert order item", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit order transaction", err)
	}
	return nil
}

func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	tag, err := s.pool.Exec(ctx, "UPDATE orders SET status = $2 WHERE id = $1", id, string(status))
	if err != nil {
		return storeErr("update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresOrderStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return storeErr("delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PostgresReservationStore implements ReservationStore on Postgres.
type PostgresReservationStore struct {
	pool *pgxpool.Pool
}

const reservationColumns = "id, customer_name, customer_phone, customer_email, reservation_date, party_size, table_id, notes, status"

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var r models.Reservation
	var tableID *int64
	err := row.Scan(&r.ID, &r.CustomerName, &r.CustomerPhone, &r.CustomerEmail,
		&r.ReservationDate, &r.PartySize, &tableID, &r.Notes, &r.Status)
	if err != nil {
		return nil, err
	}
	if tableID != nil {
		r.TableID = *tableID
	}
	return &r, nil
}

// nullableID converts a zero id to NULL for optional references.
func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func (s *PostgresReservationStore) list(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list reservations", err)
	}
	defer rows.Close()

	reservations := make([]models.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, storeErr("scan reservation", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list reservations", err)
	}
	return reservations, nil
}

func (s *PostgresReservationStore) List(ctx context.Context) ([]models.Reservation, error) {
	return s.list(ctx, "SELECT "+reservationColumns+" FROM reservations ORDER BY reservation_date")
}

func (s *PostgresReservationStore) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	r, err := scanReservation(s.pool.QueryRow(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storeErr("get reservation", err)
	}
	return r, nil
}

func (s *PostgresReservationStore) ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	return s.list(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE status = $1 ORDER BY reservation_date",
		string(status))
}

func (s *PostgresReservationStore) ListActiveByTable(ctx context.Context, tableID int64) ([]models.Reservation, error) {
	return s.list(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE table_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED', 'NO_SHOW') ORDER BY reservation_date",
		tableID)
}

func (s *PostgresReservationStore) Create(ctx context.Context, reservation *models.Reservation) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reservations (customer_name, customer_phone, customer_email, reservation_date, party_size, table_id, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		reservation.CustomerName, reservation.CustomerPhone, reservation.CustomerEmail,
		reservation.ReservationDate, reservation.PartySize, nullableID(reservation.TableID),
		reservation.Notes, string(reservation.Status),
	).Scan(&reservation.ID)
	if err != nil {
		return storeErr("create reservation", err)
	}
	return nil
}

func (s *PostgresReservationStore) Update(ctx context.Context, reservation *models.Reservation) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reservations
		 SET customer_name = $2, customer_phone = $3, customer_email = $4,
		     reservation_date = $5, party_size = $6, table_id = $7, notes = $8, status = $9
		 WHERE id = $1`,
		reservation.ID, reservation.CustomerName, reservation.CustomerPhone, reservation.CustomerEmail,
		reservation.ReservationDate, reservation.PartySize, nullableID(reservation.TableID),
		reservation.Notes, string(reservation.Status))
	if err != nil {
		return storeErr("update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresReservationStore) UpdateStatus(ctx context.Context, id int64, status models.ReservationStatus) error {
	tag, err := s.pool.Exec(ctx, "UPDATE reservations SET status = $2 WHERE id = $1", id, string(status))
	if err != nil {
		return storeErr("update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PostgresUserStore implements UserStore on Postgres.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func rolesOf(raw []string) []models.Role {
	roles := make([]models.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, models.Role(r))
	}
	return roles
}

func (s *PostgresUserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, username, password_hash, roles FROM users ORDER BY id")
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		var raw []string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &raw); err != nil {
			return nil, storeErr("scan user", err)
		}
		u.Roles = rolesOf(raw)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	var raw []string
	err := s.pool.QueryRow(ctx,
		"SELECT id, username, password_hash, roles FROM users WHERE username = $1", username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storeErr("get user", err)
	}
	u.Roles = rolesOf(raw)
	return &u, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	raw := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		raw = append(raw, string(r))
	}

	err := s.pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash, roles) VALUES ($1, $2, $3) RETURNING id",
		user.Username, user.PasswordHash, raw,
	).Scan(&user.ID)
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}
