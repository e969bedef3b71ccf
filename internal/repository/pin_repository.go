package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pinmap/internal/model"
)

type PinRepository struct {
	db *gorm.DB
}

func NewPinRepository(db *gorm.DB) *PinRepository {
	return &PinRepository{db: db}
}

func (r *PinRepository) Create(ctx context.Context, pin *model.Pin) error {
	if err := r.db.WithContext(ctx).Create(pin).Error; err != nil {
		return fmt.Errorf("create pin failed: %w", err)
	}
	return nil
}

func (r *PinRepository) List(ctx context.Context) ([]model.Pin, error) {
	pins := make([]model.Pin, 0)
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&pins).Error; err != nil {
		return nil, fmt.Errorf("list pins failed: %w", err)
	}
	return pins, nil
}
