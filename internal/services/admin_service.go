// Package services – AdminService
//
// This file implements the AdminService, which manages the administrator
// allow-list. Membership is keyed by lowercased email; the transport layer
// consults IsAdmin to gate the admin route group. The list is data, not
// config: it can be edited at runtime by existing admins.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/repo"
)

// AdminService implements the administrator allow-list. Membership changes
// do not fan out through the hub: nothing on the live pages depends on the
// admin list, the route guard re-reads it per request.
type AdminService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// canonEmail lowercases and trims an email; "" means invalid. The check is
// deliberately shallow (one "@" with text on both sides); the identity
// provider owns real validation, this only rejects obvious garbage.
func canonEmail(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(e, "@")
	if at <= 0 || at == len(e)-1 || strings.Count(e, "@") != 1 {
		return ""
	}
	return e
}

// List returns every administrator email, sorted.
func (s *AdminService) List(ctx context.Context) ([]string, error) {
	rows, err := repo.ListAdmins(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, a := range rows {
		out = append(out, a.Email)
	}
	return out, nil
}

// IsAdmin reports whether email belongs to an administrator.
func (s *AdminService) IsAdmin(ctx context.Context, email string) (bool, error) {
	e := canonEmail(email)
	if e == "" {
		return false, nil
	}
	return repo.IsAdmin(ctx, s.DB, e)
}

// Add grants admin rights to email.
func (s *AdminService) Add(ctx context.Context, email string) (*domain.Admin, error) {
	e := canonEmail(email)
	if e == "" {
		return nil, ErrInvalidEmail
	}
	a, err := repo.CreateAdmin(ctx, s.DB, e)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, ErrAdminExists
		}
		return nil, err
	}
	log.Info().Str("email", e).Msg("admin added")
	return a, nil
}

// Remove revokes admin rights from email. Removing the last administrator is
// allowed; recovery is an operational concern (seed via the database).
func (s *AdminService) Remove(ctx context.Context, email string) error {
	e := canonEmail(email)
	if e == "" {
		return ErrInvalidEmail
	}
	if err := repo.DeleteAdmin(ctx, s.DB, e); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	log.Info().Str("email", e).Msg("admin removed")
	return nil
}
