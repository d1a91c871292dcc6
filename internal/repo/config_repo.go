// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the two
// singleton configuration rows: the current week and the voting window.
//
// Both rows use a fixed primary key (domain.SingletonID) so there is exactly
// one admin-controlled source of truth per concern. Reads of a missing row
// return the zero value rather than an error: an unconfigured system renders
// a neutral "no active cycle / voting closed" state, it does not fail.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/domain"
)

// GetCurrentWeek returns the current-week singleton. A missing row yields an
// empty value, meaning no active cycle.
func GetCurrentWeek(ctx context.Context, db *gorm.DB) (*domain.CurrentWeek, error) {
	var row domain.CurrentWeek
	err := db.WithContext(ctx).First(&row, "id = ?", domain.SingletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.CurrentWeek{ID: domain.SingletonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SetCurrentWeek upserts the current-week singleton.
func SetCurrentWeek(ctx context.Context, db *gorm.DB, value string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Model(&domain.CurrentWeek{}).
		Where("id = ?", domain.SingletonID).
		Updates(map[string]any{"value": value, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&domain.CurrentWeek{
		ID:        domain.SingletonID,
		Value:     value,
		UpdatedAt: now,
	}).Error
}

// GetVotingWindow returns the voting-window singleton. A missing row yields
// nil endpoints, meaning the window was never configured and voting is closed.
func GetVotingWindow(ctx context.Context, db *gorm.DB) (*domain.VotingWindow, error) {
	var row domain.VotingWindow
	err := db.WithContext(ctx).First(&row, "id = ?", domain.SingletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.VotingWindow{ID: domain.SingletonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SetVotingWindow upserts the voting-window singleton.
func SetVotingWindow(ctx context.Context, db *gorm.DB, start, end time.Time) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Model(&domain.VotingWindow{}).
		Where("id = ?", domain.SingletonID).
		Updates(map[string]any{"starts_at": start, "ends_at": end, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&domain.VotingWindow{
		ID:        domain.SingletonID,
		StartsAt:  &start,
		EndsAt:    &end,
		UpdatedAt: now,
	}).Error
}
