// Package services – MenuService
//
// This file implements the MenuService, which manages the persistent menu
// pool that option regeneration samples from. Names are deduplicated under
// the same normalization the ballot uses, so "Taco Tuesday" and "taco
// tuesday " are one pool entry. The pool is admin-configured and survives
// across weeks; it is never mutated by the voting flow.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/ballot"
	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/repo"
)

// MenuService implements CRUD over the menu pool.
type MenuService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives change events after successful writes. Never nil.
	Hub notify.Publisher
}

// NewMenuService constructs a MenuService.
func NewMenuService(db *gorm.DB, hub notify.Publisher) *MenuService {
	return &MenuService{DB: db, Hub: hub}
}

// List returns the whole menu pool in insertion order.
func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	return repo.ListMenuItems(ctx, s.DB)
}

// Add inserts a new menu item. The display name keeps the caller's casing
// (whitespace collapsed); uniqueness is judged on the normalized key, backed
// by the unique index for the concurrent case.
func (s *MenuService) Add(ctx context.Context, name string) (*domain.MenuItem, error) {
	display := strings.Join(strings.Fields(name), " ")
	key := ballot.NormalizeKey(name)
	if key == "" {
		return nil, ErrInvalidMenuItem
	}
	it, err := repo.CreateMenuItem(ctx, s.DB, display, key)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, ErrDuplicateMenuItem
		}
		return nil, err
	}
	log.Info().Str("name", display).Msg("menu item added")
	s.Hub.Publish(notify.Event{Topic: notify.TopicMenu})
	return it, nil
}

// Rename changes a menu item's display name (and key). Renaming onto an
// existing item's key is a duplicate, except when it is the item's own key
// (a pure casing fix).
func (s *MenuService) Rename(ctx context.Context, id, name string) (*domain.MenuItem, error) {
	display := strings.Join(strings.Fields(name), " ")
	key := ballot.NormalizeKey(name)
	if key == "" {
		return nil, ErrInvalidMenuItem
	}
	it, err := repo.GetMenuItem(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	if err := repo.UpdateMenuItem(ctx, s.DB, id, display, key); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrMenuItemNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err):
			return nil, ErrDuplicateMenuItem
		default:
			return nil, err
		}
	}
	it.Name = display
	it.NameKey = key
	s.Hub.Publish(notify.Event{Topic: notify.TopicMenu})
	return it, nil
}

// Remove deletes a menu item by ID. Weeks whose options already include the
// item are unaffected: options are a snapshot, not a reference.
func (s *MenuService) Remove(ctx context.Context, id string) error {
	if err := repo.DeleteMenuItem(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return err
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicMenu})
	return nil
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
