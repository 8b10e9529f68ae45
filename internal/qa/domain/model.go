package domain

import (
	"context"
	"errors"
	"time"
)

// Judgment targets. Each target keeps its own history slot.
const (
	TargetMaterial = "material"
	TargetProduct  = "product"
)

// History slot keys per target.
const (
	MaterialHistorySlotKey = "qa-material-history"
	ProductHistorySlotKey  = "qa-product-history"
)

// SlotKeyFor maps a target to its history slot, or "" for an unknown
// target.
func SlotKeyFor(target string) string {
	switch target {
	case TargetMaterial:
		return MaterialHistorySlotKey
	case TargetProduct:
		return ProductHistorySlotKey
	}
	return ""
}

// Judgment results.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// Lot tabs: lots with no history yet vs lots already judged.
const (
	TabNew     = "new"
	TabChecked = "checked"
)

// Entry is one immutable judgment record. Entries prepend so the
// newest judgment lists first; there is no per-entry update or delete.
type Entry struct {
	ID        string    `json:"id"`
	LotNo     string    `json:"lot_no"`
	Result    string    `json:"result"`
	CheckedBy string    `json:"checked_by"`
	Time      time.Time `json:"time"`
	Producer  string    `json:"producer,omitempty"`
	Source    string    `json:"source,omitempty"`
	Location  string    `json:"location,omitempty"`
	Count     float64   `json:"count,omitempty"`
}

// Lot is the judgeable view of a lot for either target.
type Lot struct {
	LotNo string  `json:"lot_no"`
	Name  string  `json:"name"`
	Qty   float64 `json:"qty"`
	QA    string  `json:"qa,omitempty"`
}

type Service interface {
	Lots(ctx context.Context, target, tab string) ([]Lot, error)
	History(ctx context.Context, target, lotNo string) ([]Entry, error)
	Judge(ctx context.Context, target string, req JudgeRequest) (*Entry, error)
	Clear(ctx context.Context, target string) error
}

type JudgeRequest struct {
	LotNo     string  `json:"lot_no"`
	Result    string  `json:"result"`
	CheckedBy string  `json:"checked_by"`
	Producer  string  `json:"producer"`
	Source    string  `json:"source"`
	Location  string  `json:"location"`
	Count     float64 `json:"count"`
}

var (
	ErrInvalidTarget = errors.New("invalid_target")
	ErrInvalidResult = errors.New("invalid_result")
	ErrInvalidTab    = errors.New("invalid_tab")
)
