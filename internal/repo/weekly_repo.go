// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// WeeklyOptions model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules to the services package.
//
// Merge discipline:
//   - Choice writes touch only the choices column and bump updated_at; they
//     never clear the winner columns. The bumped updated_at is what marks an
//     existing winner stale.
//   - Winner writes touch only the winner columns and never updated_at, so a
//     decision cannot start a new epoch by itself.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
//
// It aliases gorm.ErrRecordNotFound so callers can use errors.Is with either.
var ErrNotFound = gorm.ErrRecordNotFound

// GetWeeklyOptions fetches the options row for a week, or ErrNotFound.
func GetWeeklyOptions(ctx context.Context, db *gorm.DB, week string) (*domain.WeeklyOptions, error) {
	var row domain.WeeklyOptions
	err := db.WithContext(ctx).First(&row, "week = ?", week).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// ListWeeklyOptions returns every weekly row, newest decided winner first,
// undecided rows last. Used by the winner history and CSV export.
func ListWeeklyOptions(ctx context.Context, db *gorm.DB) ([]domain.WeeklyOptions, error) {
	var out []domain.WeeklyOptions
	err := db.WithContext(ctx).
		Order("winner_decided_at IS NULL, winner_decided_at DESC, week DESC").
		Find(&out).Error
	return out, err
}

// ScaffoldWeek ensures a row exists for week and bumps updated_at, matching
// the admin "save week" action. Choices and winner columns are left alone on
// an existing row; the updated_at bump deliberately starts a new epoch.
func ScaffoldWeek(ctx context.Context, db *gorm.DB, week string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Model(&domain.WeeklyOptions{}).
		Where("week = ?", week).
		Update("updated_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	row := &domain.WeeklyOptions{Week: week, UpdatedAt: now}
	row.SetChoiceList(nil)
	return db.WithContext(ctx).Create(row).Error
}

// SetChoices merge-writes the choices column for week and bumps updated_at,
// creating the row when absent. Winner columns are never touched here; a
// previously decided winner simply becomes stale via the new updated_at.
func SetChoices(ctx context.Context, db *gorm.DB, week string, choices []string) error {
	now := time.Now().UTC()
	carrier := domain.WeeklyOptions{}
	carrier.SetChoiceList(choices)

	res := db.WithContext(ctx).Model(&domain.WeeklyOptions{}).
		Where("week = ?", week).
		Updates(map[string]any{
			"choices":    carrier.Choices,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	row := &domain.WeeklyOptions{Week: week, Choices: carrier.Choices, UpdatedAt: now}
	return db.WithContext(ctx).Create(row).Error
}

// ClearWinner blanks the winner columns for week. Used when an admin extends
// the voting window past a decision that would otherwise stand.
func ClearWinner(ctx context.Context, db *gorm.DB, week string) error {
	return db.WithContext(ctx).Model(&domain.WeeklyOptions{}).
		Where("week = ?", week).
		Updates(map[string]any{
			"winner_name":       nil,
			"winner_tally":      nil,
			"winner_decided_at": nil,
			"winner_source":     "",
		}).Error
}
