// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for administrator
// membership, keyed by lowercased email.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/domain"
)

// CreateAdmin inserts a membership row. Duplicate emails surface as the raw
// primary-key constraint error for the service layer to translate.
func CreateAdmin(ctx context.Context, db *gorm.DB, email string) (*domain.Admin, error) {
	a := &domain.Admin{
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAdmin removes a membership row, or ErrNotFound when absent.
func DeleteAdmin(ctx context.Context, db *gorm.DB, email string) error {
	res := db.WithContext(ctx).Delete(&domain.Admin{}, "email = ?", email)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAdmins returns every membership row ordered by email.
func ListAdmins(ctx context.Context, db *gorm.DB) ([]domain.Admin, error) {
	var out []domain.Admin
	err := db.WithContext(ctx).Order("email ASC").Find(&out).Error
	return out, err
}

// IsAdmin reports whether the email has a membership row.
func IsAdmin(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var row domain.Admin
	err := db.WithContext(ctx).First(&row, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
