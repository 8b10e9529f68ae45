package domain

import (
	"context"
	"errors"
	"time"
)

// Slot keys for the warehouse collections.
const (
	StockSlotKey           = "stock-rows"
	MovementSlotKey        = "warehouse-movements"
	AllocationSlotKey      = "allocations"
	PurchaseRequestSlotKey = "purchase-requests"
)

// Stock row states.
const (
	StockStatusNormal       = "normal"
	StockStatusBelowMinimum = "below_minimum"
	StockStatusPending      = "pending"
)

// Stock row QA states.
const (
	StockQAPass     = "pass"
	StockQAFail     = "fail"
	StockQAAwaiting = "awaiting"
)

// Movement directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// StockRow tracks material demand for a production order. Rows append
// in arrival order.
type StockRow struct {
	ID           string  `json:"id"`
	OrderNo      string  `json:"order_no"`
	MaterialName string  `json:"material_name"`
	RequiredQty  float64 `json:"required_qty"`
	Unit         string  `json:"unit"`
	Status       string  `json:"status"`
	QA           string  `json:"qa"`
}

// Movement is one append-only stock movement record.
type Movement struct {
	ID        string    `json:"id"`
	LotNo     string    `json:"lot_no"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Qty       float64   `json:"qty"`
	Direction string    `json:"direction"`
	Category  string    `json:"category"`
	RefNo     string    `json:"ref_no"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note"`
}

// Allocation is a raw-material line awaiting allocation to production.
type Allocation struct {
	ID         string    `json:"id"`
	LotID      string    `json:"lot_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Qty        float64   `json:"qty"`
	Status     string    `json:"status"`
	ImportDate time.Time `json:"import_date"`
}

// AllocationStatusAwaiting is the state every new allocation row starts in.
const AllocationStatusAwaiting = "awaiting_allocation"

// PurchaseRequest is the PR-<5 digits> record cut for an allocation
// submission.
type PurchaseRequest struct {
	RequestNo string    `json:"request_no"`
	Lines     int       `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
}

type Service interface {
	ListStock(ctx context.Context) ([]StockRow, error)
	CreateStock(ctx context.Context, req CreateStockRequest) (*StockRow, error)
	Movements(ctx context.Context, req MovementFilter) ([]Movement, error)
	RecordMovement(ctx context.Context, req MovementRequest) (*Movement, error)
	Withdraw(ctx context.Context, req WithdrawRequest) ([]Movement, error)
	Allocate(ctx context.Context, req AllocateRequest) (*AllocateResult, error)
	ListAllocations(ctx context.Context) ([]Allocation, error)
	ListPurchaseRequests(ctx context.Context) ([]PurchaseRequest, error)
}

type CreateStockRequest struct {
	OrderNo      string  `json:"order_no"`
	MaterialName string  `json:"material_name"`
	RequiredQty  float64 `json:"required_qty"`
	Unit         string  `json:"unit"`
	Status       string  `json:"status"`
	QA           string  `json:"qa"`
}

type MovementFilter struct {
	Direction string
	LotNo     string
}

type MovementRequest struct {
	LotNo     string  `json:"lot_no"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	Direction string  `json:"direction"`
	Category  string  `json:"category"`
	RefNo     string  `json:"ref_no"`
	Note      string  `json:"note"`
}

// WithdrawLine selects a per-lot quantity to take out.
type WithdrawLine struct {
	LotNo string  `json:"lot_no"`
	Qty   float64 `json:"qty"`
}

type WithdrawRequest struct {
	RefNo string         `json:"ref_no"`
	Note  string         `json:"note"`
	Lines []WithdrawLine `json:"lines"`
}

// AllocateLine is one submitted raw-material allocation row.
type AllocateLine struct {
	LotID string  `json:"lot_id"`
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Qty   float64 `json:"qty"`
}

type AllocateRequest struct {
	Lines []AllocateLine `json:"lines"`
}

type AllocateResult struct {
	Rows            []Allocation    `json:"rows"`
	PurchaseRequest PurchaseRequest `json:"purchase_request"`
}

var (
	ErrInvalidDirection = errors.New("invalid_direction")
)
