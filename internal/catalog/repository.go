package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tableside/backoffice/internal/domain"
)

// Repository stores the menu side of the system: dishes with their ingredient
// links, plus the ingredient, unit and category lookup tables.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateDish(ctx context.Context, dish *domain.Dish) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	dish.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dishes (id, name, description, category_id, price)
		VALUES ($1, $2, $3, $4, $5)
	`, dish.ID, dish.Name, dish.Description, nullString(dish.CategoryID), dish.Price)
	if err != nil {
		return err
	}

	if err := insertIngredientLinks(ctx, tx, dish); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) UpdateDish(ctx context.Context, dish *domain.Dish) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE dishes SET name = $1, description = $2, category_id = $3, price = $4
		WHERE id = $5
	`, dish.Name, dish.Description, nullString(dish.CategoryID), dish.Price, dish.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDishNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dish_ingredients WHERE dish_id = $1`, dish.ID); err != nil {
		return err
	}
	if err := insertIngredientLinks(ctx, tx, dish); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeleteDish(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dishes WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDishNotFound
	}
	return nil
}

func insertIngredientLinks(ctx context.Context, tx *sql.Tx, dish *domain.Dish) error {
	for i := range dish.Ingredients {
		link := &dish.Ingredients[i]
		if link.ID == "" {
			link.ID = uuid.New().String()
		}
		link.DishID = dish.ID

		var ingredientID sql.NullString
		if link.Ingredient != nil {
			ingredientID = sql.NullString{String: link.Ingredient.ID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dish_ingredients (id, dish_id, ingredient_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, link.ID, link.DishID, ingredientID, link.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Dish, error) {
	dishes, err := r.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	dish, ok := dishes[id]
	if !ok {
		return nil, nil
	}
	return &dish, nil
}

// GetByIDs loads dishes with their ingredient links, ingredient names and
// unit names hydrated, keyed by dish id. Unknown ids are simply absent.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Dish, error) {
	dishes := make(map[string]domain.Dish)
	if len(ids) == 0 {
		return dishes, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, category_id, price
		FROM dishes
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes[dish.ID] = *dish
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(dishes) == 0 {
		return dishes, nil
	}

	linkRows, err := r.db.QueryContext(ctx, `
		SELECT di.id, di.dish_id, di.quantity,
		       i.id, i.name, u.id, u.name
		FROM dish_ingredients di
		LEFT JOIN ingredients i ON i.id = di.ingredient_id
		LEFT JOIN units u ON u.id = i.unit_id
		WHERE di.dish_id = ANY($1)
		ORDER BY di.dish_id, di.id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = linkRows.Close() }()

	for linkRows.Next() {
		var link domain.DishIngredient
		var ingredientID, ingredientName, unitID, unitName sql.NullString
		if err := linkRows.Scan(&link.ID, &link.DishID, &link.Quantity,
			&ingredientID, &ingredientName, &unitID, &unitName); err != nil {
			return nil, err
		}

		if ingredientID.Valid {
			link.Ingredient = &domain.Ingredient{
				ID:   ingredientID.String,
				Name: ingredientName.String,
				Unit: domain.Unit{ID: unitID.String, Name: unitName.String},
			}
		}

		dish := dishes[link.DishID]
		dish.Ingredients = append(dish.Ingredients, link)
		dishes[link.DishID] = dish
	}

	if err := linkRows.Err(); err != nil {
		return nil, err
	}

	return dishes, nil
}

func (r *Repository) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, category_id, price
		FROM dishes
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dishes []domain.Dish
	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *dish)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dishes, nil
}

func scanDish(rows *sql.Rows) (*domain.Dish, error) {
	dish := &domain.Dish{}
	var categoryID sql.NullString
	if err := rows.Scan(&dish.ID, &dish.Name, &dish.Description, &categoryID, &dish.Price); err != nil {
		return nil, err
	}
	dish.CategoryID = categoryID.String
	return dish, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, category.ID, category.Name)
	return err
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *Repository) CreateUnit(ctx context.Context, unit *domain.Unit) error {
	unit.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `INSERT INTO units (id, name) VALUES ($1, $2)`, unit.ID, unit.Name)
	return err
}

func (r *Repository) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var units []domain.Unit
	for rows.Next() {
		var unit domain.Unit
		if err := rows.Scan(&unit.ID, &unit.Name); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *Repository) CreateIngredient(ctx context.Context, ingredient *domain.Ingredient) error {
	ingredient.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, unit_id) VALUES ($1, $2, $3)
	`, ingredient.ID, ingredient.Name, ingredient.Unit.ID)
	return err
}

func (r *Repository) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, u.id, u.name
		FROM ingredients i
		LEFT JOIN units u ON u.id = i.unit_id
		ORDER BY i.name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ingredients []domain.Ingredient
	for rows.Next() {
		var ingredient domain.Ingredient
		var unitID, unitName sql.NullString
		if err := rows.Scan(&ingredient.ID, &ingredient.Name, &unitID, &unitName); err != nil {
			return nil, err
		}
		ingredient.Unit = domain.Unit{ID: unitID.String, Name: unitName.String}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
