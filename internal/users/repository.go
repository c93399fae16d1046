package users

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tableside/backoffice/internal/domain"
)

// Repository is the read side of the staff directory; account management and
// authentication live elsewhere.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.FirstName, user.LastName, user.Email, user.Role)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, role
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByIDs batch-loads users keyed by id. Unknown ids are absent.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User)
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, role
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Role); err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}
