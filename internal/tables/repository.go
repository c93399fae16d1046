package tables

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/tableside/backoffice/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, table *domain.Table) error {
	table.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO restaurant_tables (id, name, seats, is_active, is_occupied)
		VALUES ($1, $2, $3, $4, $5)
	`, table.ID, table.Name, table.Seats, table.Active, table.Occupied)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	table := &domain.Table{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, seats, is_active, is_occupied
		FROM restaurant_tables
		WHERE id = $1
	`, id).Scan(&table.ID, &table.Name, &table.Seats, &table.Active, &table.Occupied)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return table, nil
}

// SetOccupied flips the occupancy flag; closing an order releases its table
// through this.
func (r *Repository) SetOccupied(ctx context.Context, id string, occupied bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE restaurant_tables SET is_occupied = $1 WHERE id = $2
	`, occupied, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTableNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, seats, is_active, is_occupied
		FROM restaurant_tables
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []domain.Table
	for rows.Next() {
		var table domain.Table
		if err := rows.Scan(&table.ID, &table.Name, &table.Seats, &table.Active, &table.Occupied); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}
