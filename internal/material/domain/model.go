package domain

import (
	"context"
	"errors"
	"time"
)

// SlotKey names the durable slot holding the material list.
const SlotKey = "materials"

// Material is a raw-material stock record. New records list first.
type Material struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Qty       float64   `json:"qty"`
	Unit      string    `json:"unit"`
	MinQty    float64   `json:"min_qty"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// LowStock reports whether the quantity sits strictly below the minimum.
func (m Material) LowStock() bool {
	return m.Qty < m.MinQty
}

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Material, error)
	Get(ctx context.Context, id string) (*Material, error)
	Create(ctx context.Context, req CreateRequest) (*Material, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Material, error)
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context) ([]LowStockItem, error)
	ExportCSV(ctx context.Context, req ListRequest) ([]byte, error)
}

type ListRequest struct {
	Query    string
	Category string
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Qty      float64 `json:"qty"`
	Unit     string  `json:"unit"`
	MinQty   float64 `json:"min_qty"`
	Note     string  `json:"note"`
}

type UpdateRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Qty      float64 `json:"qty"`
	Unit     string  `json:"unit"`
	MinQty   float64 `json:"min_qty"`
	Note     string  `json:"note"`
}

// LowStockItem pairs a low-stock material with its alert severity.
type LowStockItem struct {
	Material
	Severity string `json:"severity"`
}

var (
	ErrNotFound  = errors.New("material_not_found")
	ErrInvalidID = errors.New("invalid_id")
)
