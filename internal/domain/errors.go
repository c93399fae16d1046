package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrDishNotFound       = errors.New("dish not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrUnitNotFound       = errors.New("unit not found")
)
