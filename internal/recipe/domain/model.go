package domain

import (
	"context"
	"errors"
	"time"
)

// SlotKey names the durable slot holding the recipe list.
const SlotKey = "recipes"

// Ingredient is one material line of a recipe.
type Ingredient struct {
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// Recipe names a product formula. Name is the natural key, matched
// case-insensitively on the trimmed value; Slug is its normalized form.
type Recipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Note        string       `json:"note"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Service interface {
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, name string) (*Recipe, error)
	Save(ctx context.Context, req SaveRequest) (*Recipe, error)
	Delete(ctx context.Context, name string) error
}

// SaveRequest upserts a recipe. ID is optional; when present the save
// targets that record, otherwise the name decides between update and
// insert.
type SaveRequest struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Note        string       `json:"note"`
	Ingredients []Ingredient `json:"ingredients"`
}

var (
	ErrNotFound    = errors.New("recipe_not_found")
	ErrInvalidName = errors.New("invalid_name")
)
