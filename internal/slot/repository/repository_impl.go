package repository

import (
	"context"

	"github.com/smallbiznis/prodline/internal/slot/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, key string) (*domain.Slot, error) {
	var s domain.Slot
	err := db.WithContext(ctx).Raw(
		`SELECT slot_key, payload, updated_at FROM slots WHERE slot_key = ?`,
		key,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.SlotKey == "" {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) Put(ctx context.Context, db *gorm.DB, slot *domain.Slot) error {
	if slot == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(slot).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, key string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM slots WHERE slot_key = ?`, key).Error
}

func (r *repo) Keys(ctx context.Context, db *gorm.DB) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).Raw(
		`SELECT slot_key FROM slots ORDER BY slot_key ASC`,
	).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
