// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the MenuItem
// pool that weekly options are regenerated from.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/domain"
)

// CreateMenuItem inserts a pool entry. nameKey carries the unique index, so
// a duplicate under normalization surfaces as a constraint error.
func CreateMenuItem(ctx context.Context, db *gorm.DB, name, nameKey string) (*domain.MenuItem, error) {
	now := time.Now().UTC()
	item := &domain.MenuItem{
		ID:        uuid.NewString(),
		Name:      name,
		NameKey:   nameKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// GetMenuItem fetches a pool entry by ID, or ErrNotFound.
func GetMenuItem(ctx context.Context, db *gorm.DB, id string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateMenuItem renames a pool entry, or ErrNotFound when absent.
func UpdateMenuItem(ctx context.Context, db *gorm.DB, id, name, nameKey string) error {
	res := db.WithContext(ctx).Model(&domain.MenuItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":       name,
			"name_key":   nameKey,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMenuItem removes a pool entry, or ErrNotFound when absent.
func DeleteMenuItem(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.MenuItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMenuItems returns the full pool in insertion order.
func ListMenuItems(ctx context.Context, db *gorm.DB) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	err := db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}
