package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Unit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Ingredient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit Unit   `json:"unit"`
}

// DishIngredient links a dish to one of its ingredients with the quantity
// consumed per single serving. Ingredient may be nil when the referenced
// ingredient has been removed from the catalog.
type DishIngredient struct {
	ID         string      `json:"id"`
	DishID     string      `json:"dish_id"`
	Ingredient *Ingredient `json:"ingredient"`
	Quantity   float64     `json:"quantity"`
}

type Dish struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  string           `json:"category_id,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	Ingredients []DishIngredient `json:"ingredients,omitempty"`
}
