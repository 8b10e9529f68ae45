package domain

import (
	"context"
	"errors"
	"time"
)

// Slot keys for the production collections.
const (
	OrderSlotKey       = "production-orders"
	LotSlotKey         = "product-lots"
	MaterialUseSlotKey = "material-use"
)

// Status values an order moves through.
const (
	StatusInProgress         = "in_progress"
	StatusCompleted          = "completed"
	StatusPartiallyCompleted = "partially_completed"
	StatusCanceled           = "canceled"
)

// ValidStatus reports whether s names a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusPartiallyCompleted, StatusCanceled:
		return true
	}
	return false
}

// Order is a production order. OrderNo is PO<yymmdd>-<4 digits>.
type Order struct {
	OrderNo     string    `json:"order_no"`
	ProductName string    `json:"product_name"`
	Qty         float64   `json:"qty"`
	CreateDate  time.Time `json:"create_date"`
	StartDate   string    `json:"start_date"`
	DueDate     string    `json:"due_date"`
	Status      string    `json:"status"`
}

// QA states a product lot can carry.
const (
	LotQAAwaiting = "awaiting"
	LotQAPass     = "pass"
	LotQAFail     = "fail"
)

// Lot is a produced product lot, judged by QA and withdrawn by the
// warehouse.
type Lot struct {
	ID          string    `json:"id"`
	OrderNo     string    `json:"order_no"`
	LotNo       string    `json:"lot_no"`
	ProductName string    `json:"product_name"`
	Qty         float64   `json:"qty"`
	Remain      float64   `json:"remain"`
	QA          string    `json:"qa"`
	CreatedAt   time.Time `json:"created_at"`
}

// MaterialUse is one recorded material draw against an order.
type MaterialUse struct {
	OrderNo    string    `json:"order_no"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Requirement is the derived material demand for an order: recipe
// ingredient quantity times order quantity.
type Requirement struct {
	MaterialName string  `json:"material_name"`
	Required     float64 `json:"required"`
	Unit         string  `json:"unit"`
}

type Service interface {
	List(ctx context.Context) ([]Order, error)
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	UpdateStatus(ctx context.Context, orderNo, status string) (*Order, error)
	CreateLot(ctx context.Context, orderNo string, req CreateLotRequest) (*Lot, error)
	Lots(ctx context.Context) ([]Lot, error)
	SetLotQA(ctx context.Context, lotNo, qa string) error
	WithdrawFromLot(ctx context.Context, lotNo string, qty float64) (*Lot, error)
	RecordMaterialUse(ctx context.Context, orderNo string, rows []MaterialUseRow) ([]MaterialUse, error)
	Requirements(ctx context.Context, orderNo string) ([]Requirement, error)
}

type CreateRequest struct {
	ProductName string  `json:"product_name"`
	Qty         float64 `json:"qty"`
	StartDate   string  `json:"start_date"`
	DueDate     string  `json:"due_date"`
}

type CreateLotRequest struct {
	LotNo       string  `json:"lot_no"`
	ProductName string  `json:"product_name"`
	Qty         float64 `json:"qty"`
}

// MaterialUseRow is one submitted draw line. Rows with a blank name or
// non-positive amount are dropped, not rejected.
type MaterialUseRow struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

var (
	ErrNotFound          = errors.New("order_not_found")
	ErrLotNotFound       = errors.New("lot_not_found")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrNoRecipe          = errors.New("recipe_not_found_for_order")
	ErrInsufficientStock = errors.New("insufficient_lot_stock")
)
