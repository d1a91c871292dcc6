// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vote model.
//
// Error semantics:
//   - A duplicate (user_id, week) insert relies on the database unique index
//     and is returned as a raw DB error. The service layer pre-checks with
//     HasVoteForUserWeek and translates residual constraint errors into its
//     ErrAlreadyVoted sentinel.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/domain"
)

// CreateVote inserts one vote row for the given user and week.
func CreateVote(ctx context.Context, db *gorm.DB, userID, userName, userEmail, choice, week string) (*domain.Vote, error) {
	v := &domain.Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		UserEmail: userEmail,
		Choice:    choice,
		Week:      week,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// HasVoteForUserWeek reports whether user already voted in week.
func HasVoteForUserWeek(ctx context.Context, db *gorm.DB, userID, week string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Vote{}).
		Where("user_id = ? AND week = ?", userID, week).
		Count(&n).Error
	return n > 0, err
}

// HasVotesForWeek reports whether any vote exists for week. This backs the
// admin-side gate that blocks regenerating options once voting has started.
func HasVotesForWeek(ctx context.Context, db *gorm.DB, week string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Vote{}).
		Where("week = ?", week).
		Count(&n).Error
	return n > 0, err
}

// ListVoteChoices returns the raw choice strings of every vote for week, in
// submission order. This is the tally engine's input.
func ListVoteChoices(ctx context.Context, db *gorm.DB, week string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).Model(&domain.Vote{}).
		Where("week = ?", week).
		Order("created_at ASC, id ASC").
		Pluck("choice", &out).Error
	return out, err
}

// CountVotesForWeek returns the number of vote rows for week.
func CountVotesForWeek(ctx context.Context, db *gorm.DB, week string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Vote{}).
		Where("week = ?", week).
		Count(&n).Error
	return n, err
}

// ListVotesPage returns a page of votes for week ordered deterministically
// (CreatedAt ASC, ID ASC). Backs the admin voters page.
func ListVotesPage(ctx context.Context, db *gorm.DB, week string, offset, limit int) ([]domain.Vote, error) {
	var out []domain.Vote
	err := db.WithContext(ctx).
		Where("week = ?", week).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetVoteForUserWeek fetches the caller's own vote for week, or ErrNotFound.
func GetVoteForUserWeek(ctx context.Context, db *gorm.DB, userID, week string) (*domain.Vote, error) {
	var v domain.Vote
	err := db.WithContext(ctx).
		First(&v, "user_id = ? AND week = ?", userID, week).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteAllVotes removes every vote row. Admin "danger zone" reset.
func DeleteAllVotes(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Where("1 = 1").Delete(&domain.Vote{})
	return res.RowsAffected, res.Error
}
