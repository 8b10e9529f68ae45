package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Slot is a named durable storage cell. Each record collection persists
// its full JSON payload under a stable key.
type Slot struct {
	SlotKey   string         `gorm:"column:slot_key;primaryKey" json:"key"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name used by GORM.
func (Slot) TableName() string {
	return "slots"
}
