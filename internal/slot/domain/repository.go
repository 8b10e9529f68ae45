package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists slots. Get returns (nil, nil) when the key has
// never been written.
type Repository interface {
	Get(ctx context.Context, db *gorm.DB, key string) (*Slot, error)
	Put(ctx context.Context, db *gorm.DB, slot *Slot) error
	Delete(ctx context.Context, db *gorm.DB, key string) error
	Keys(ctx context.Context, db *gorm.DB) ([]string, error)
}
