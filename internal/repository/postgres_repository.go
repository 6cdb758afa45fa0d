package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/savoria/storefront/internal/domain"
)

const (
	EventOrderCreated       = "order-created"
	EventOrderStatusChanged = "order-status-changed"
)

// PostgresRepository holds orders, reservations and the outbox. It is
// the single source of truth the guards recompute their state from.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryWithDB wraps an existing connection (tests).
func NewPostgresRepositoryWithDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, order_number, user_id, status, items, subtotal, delivery_fee, total, payment_method, receipt_ref, customer, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		itemsJSON,
		order.Subtotal,
		order.DeliveryFee,
		order.Total,
		order.PaymentMethod,
		order.ReceiptRef,
		customerJSON,
		order.CreatedAt,
		order.UpdatedAt)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	if err := insertOutboxEvent(ctx, tx, order.ID.String(), EventOrderCreated, orderEventPayload(order)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := selectOrderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := selectOrderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus commits the transition only when the stored status
// still equals from. Losing the race surfaces ErrConflict so the caller
// re-reads and re-evaluates the guard.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, at, id, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if e2 := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); e2 != nil {
			return fmt.Errorf("check order existence: %w", e2)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrConflict
	}

	payload := map[string]interface{}{
		"order_id":   id.String(),
		"from":       from,
		"to":         to,
		"changed_at": at,
	}
	if err := insertOutboxEvent(ctx, tx, id.String(), EventOrderStatusChanged, payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// The advisory lock serializes admissions per (user, date) for the
	// duration of the transaction. Without it the counting subquery
	// below reads a statement-start snapshot: two overlapping inserts
	// would each count the rows committed before they started, both
	// pass the cap check, and both commit.
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
		res.UserID, res.Date); err != nil {
		return fmt.Errorf("lock reservation slot: %w", err)
	}

	query := `INSERT INTO reservations (id, user_id, date, time, guests, status, special_requests, created_at)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $8
	          WHERE (SELECT COUNT(*) FROM reservations
	                 WHERE user_id = $2 AND date = $3 AND status <> 'cancelled') < $9`

	result, err := tx.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.Date,
		res.Time,
		res.Guests,
		res.Status,
		res.SpecialRequests,
		res.CreatedAt,
		domain.DailyReservationCap)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCapacityExceeded
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountActiveReservations(ctx context.Context, userID, date string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND date = $2 AND status <> 'cancelled'`,
		userID, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) GetReservationByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, time, guests, status, special_requests, created_at
		 FROM reservations WHERE id = $1`, id).Scan(
		&res.ID,
		&res.UserID,
		&res.Date,
		&res.Time,
		&res.Guests,
		&res.Status,
		&res.SpecialRequests,
		&res.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation by id: %w", err)
	}
	return &res, nil
}

func (r *PostgresRepository) ListReservationsByUserID(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, time, guests, status, special_requests, created_at
		 FROM reservations WHERE user_id = $1 ORDER BY date, time`, userID)
	if err != nil {
		return nil, fmt.Errorf("query reservations by user id: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.Date,
			&res.Time,
			&res.Guests,
			&res.Status,
			&res.SpecialRequests,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reservations, nil
}

func (r *PostgresRepository) CancelReservation(ctx context.Context, id uuid.UUID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'cancelled' WHERE id = $1 AND user_id = $2 AND status <> 'cancelled'`,
		id, userID)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}

const selectOrderColumns = `SELECT id, order_number, user_id, status, items, subtotal, delivery_fee, total, payment_method, receipt_ref, customer, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, customerJSON []byte
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&itemsJSON,
		&order.Subtotal,
		&order.DeliveryFee,
		&order.Total,
		&order.PaymentMethod,
		&order.ReceiptRef,
		&customerJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer snapshot: %w", err)
	}
	return &order, nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, aggregateID, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())`,
		aggregateID, eventType, payloadJSON)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func orderEventPayload(order *domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"order_id":       order.ID.String(),
		"order_number":   order.OrderNumber,
		"user_id":        order.UserID,
		"status":         order.Status,
		"items":          order.Items,
		"total":          order.Total,
		"payment_method": order.PaymentMethod,
		"created_at":     order.CreatedAt,
	}
}
