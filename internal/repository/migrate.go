package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pinmap/internal/model"
)

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.User{}, &model.Pin{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
