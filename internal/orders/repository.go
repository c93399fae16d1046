package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tableside/backoffice/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, table_id, status, ready_to_serve, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, order.ID, order.UserID, order.TableID, order.Status, order.ReadyToServe, order.TotalPrice, order.CreatedAt)
	return err
}

// Update persists the whole order including its item collection. Items are
// replaced wholesale: every row for the order is deleted and the current
// collection reinserted with fresh ids.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET user_id = $1, table_id = $2, status = $3, ready_to_serve = $4,
		    total_price = $5, processing_started_at = $6, duration_ns = $7
		WHERE id = $8
	`, order.UserID, order.TableID, order.Status, order.ReadyToServe,
		order.TotalPrice, nullTime(order.ProcessingStartedAt), nullDuration(order.Duration), order.ID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, dish_id, quantity, ready, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.OrderID, item.DishID, item.Quantity, item.Ready, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) SetReadyToServe(ctx context.Context, id string, ready bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET ready_to_serve = $1 WHERE id = $2`, ready, id)
	return err
}

// Delete removes the order and its items in one transaction.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

const orderColumns = `id, user_id, table_id, status, ready_to_serve, total_price, created_at, processing_started_at, duration_ns`

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, dish_id, quantity, ready
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.DishID, &item.Quantity, &item.Ready); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (r *OrderRepository) ListNotClosed(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status <> $1
		ORDER BY created_at DESC
	`, domain.OrderStatusClosed)
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
}

// ListByDateRangeAndStatus returns orders created in [from, to) with the given
// status, oldest first so aggregations see keys in chronological order.
func (r *OrderRepository) ListByDateRangeAndStatus(ctx context.Context, from, to time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status = $3
		ORDER BY created_at
	`, from, to, status)
}

func (r *OrderRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`, from, to)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, dish_id, quantity, ready
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.DishID, &item.Quantity, &item.Ready); err != nil {
			return nil, err
		}
		order := orderMap[item.OrderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var processingStartedAt sql.NullTime
	var durationNS sql.NullInt64

	err := row.Scan(&order.ID, &order.UserID, &order.TableID, &order.Status,
		&order.ReadyToServe, &order.TotalPrice, &order.CreatedAt,
		&processingStartedAt, &durationNS)
	if err != nil {
		return nil, err
	}

	if processingStartedAt.Valid {
		t := processingStartedAt.Time
		order.ProcessingStartedAt = &t
	}
	if durationNS.Valid {
		d := time.Duration(durationNS.Int64)
		order.Duration = &d
	}

	return order, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullDuration(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*d), Valid: true}
}
