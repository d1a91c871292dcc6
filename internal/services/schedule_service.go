// Package services – ScheduleService
//
// This file implements the ScheduleService, which owns the two singleton
// configuration records: the current week key and the voting window. The
// current week is manual-only: when the admin has not set it there is no
// active cycle and every dependent surface renders a neutral state. Earlier
// revisions of this product derived a week key from the calendar or from the
// window start when the value was unset; that fallback was removed on purpose
// and must not come back: an implicit cycle that disagrees between clients
// is worse than no cycle.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/ballot"
	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/repo"
)

// DefaultWinnerClearGrace is how far past the previous window end a decision
// may fall and still be cleared when the admin extends the window. Decisions
// land within a tick or two of the end; the grace absorbs that skew.
const DefaultWinnerClearGrace = time.Minute

// ScheduleService manages the current-week and voting-window singletons and
// answers "is voting open" style questions from one consistent snapshot.
type ScheduleService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives change events after successful writes. Never nil.
	Hub notify.Publisher
	// WinnerClearGrace bounds the stale-winner reconciliation on window
	// extension. Zero means DefaultWinnerClearGrace.
	WinnerClearGrace time.Duration
	// Now returns the current time; overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// NewScheduleService constructs a ScheduleService with defaults.
func NewScheduleService(db *gorm.DB, hub notify.Publisher) *ScheduleService {
	return &ScheduleService{
		DB:               db,
		Hub:              hub,
		WinnerClearGrace: DefaultWinnerClearGrace,
	}
}

func (s *ScheduleService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ScheduleService) grace() time.Duration {
	if s.WinnerClearGrace > 0 {
		return s.WinnerClearGrace
	}
	return DefaultWinnerClearGrace
}

// CurrentWeek returns the active week key, or ErrWeekNotSet when the admin
// has not configured one.
func (s *ScheduleService) CurrentWeek(ctx context.Context) (string, error) {
	row, err := repo.GetCurrentWeek(ctx, s.DB)
	if err != nil {
		return "", err
	}
	wk := strings.TrimSpace(row.Value)
	if wk == "" {
		return "", ErrWeekNotSet
	}
	return wk, nil
}

// SetCurrentWeek validates and persists the week key, then scaffolds the
// weekly options row for it (merge: existing choices and winner survive, but
// updated_at is bumped, starting a new epoch exactly like the original admin
// action).
func (s *ScheduleService) SetCurrentWeek(ctx context.Context, week string) error {
	week = strings.TrimSpace(week)
	if !ballot.ValidWeekKey(week) {
		return ErrInvalidWeekKey
	}
	if err := repo.SetCurrentWeek(ctx, s.DB, week); err != nil {
		return err
	}
	if err := repo.ScaffoldWeek(ctx, s.DB, week); err != nil {
		return err
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicWeek, Week: week})
	s.Hub.Publish(notify.Event{Topic: notify.TopicOptions, Week: week})
	return nil
}

// AdvanceWeek sets the current week to the ISO week following the present
// one and returns the new key. Fails with ErrWeekNotSet when no week is
// configured to advance from.
func (s *ScheduleService) AdvanceWeek(ctx context.Context) (string, error) {
	cur, err := s.CurrentWeek(ctx)
	if err != nil {
		return "", err
	}
	next, err := ballot.NextWeekKey(cur)
	if err != nil {
		return "", ErrInvalidWeekKey
	}
	if err := s.SetCurrentWeek(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// Window returns the voting-window singleton. Nil endpoints mean unset.
func (s *ScheduleService) Window(ctx context.Context) (*domain.VotingWindow, error) {
	return repo.GetVotingWindow(ctx, s.DB)
}

// SetWindow validates and persists the voting window.
//
// Reconciliation: when the new end extends past the previous one, a winner
// already decided for the current week is no longer the outcome of a closed
// window; it is cleared (transactionally) so the decision re-runs when the
// extended window actually ends. Only decisions made at or before the
// previous end plus the grace are cleared; a winner from an older epoch that
// somehow survived is left for the staleness path.
func (s *ScheduleService) SetWindow(ctx context.Context, start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return ErrInvalidWindow
	}

	prev, err := repo.GetVotingWindow(ctx, s.DB)
	if err != nil {
		return err
	}
	if err := repo.SetVotingWindow(ctx, s.DB, start.UTC(), end.UTC()); err != nil {
		return err
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicWindow})

	extended := prev.EndsAt != nil && end.After(*prev.EndsAt)
	if !extended {
		return nil
	}
	week, err := s.CurrentWeek(ctx)
	if err != nil {
		// No active cycle: nothing to reconcile.
		return nil
	}
	cutoff := prev.EndsAt.Add(s.grace())

	cleared := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := repo.GetWeeklyOptions(ctx, tx, week)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			return err
		}
		w := row.Winner()
		if w == nil || w.DecidedAt.After(cutoff) {
			return nil
		}
		cleared = true
		return repo.ClearWinner(ctx, tx, week)
	})
	if err != nil {
		return err
	}
	if cleared {
		log.Info().Str("week", week).Time("new_end", end).Msg("voting window extended, stale winner cleared")
		s.Hub.Publish(notify.Event{Topic: notify.TopicOptions, Week: week})
	}
	return nil
}

// Status is a point-in-time snapshot of the schedule, consumed by the
// schedule endpoint and the decider trigger.
type Status struct {
	Week       string             `json:"week"`
	StartsAt   *time.Time         `json:"starts_at,omitempty"`
	EndsAt     *time.Time         `json:"ends_at,omitempty"`
	State      ballot.WindowState `json:"state"`
	Open       bool               `json:"open"`
	UntilOpen  time.Duration      `json:"-"`
	UntilClose time.Duration      `json:"-"`
}

// StatusAt evaluates the window guard for the given instant. Week is empty
// when no cycle is active; that is a valid snapshot, not an error.
func (s *ScheduleService) StatusAt(ctx context.Context, now time.Time) (*Status, error) {
	week, err := s.CurrentWeek(ctx)
	if err != nil && !errors.Is(err, ErrWeekNotSet) {
		return nil, err
	}
	win, err := s.Window(ctx)
	if err != nil {
		return nil, err
	}

	var start, end time.Time
	if win.StartsAt != nil {
		start = *win.StartsAt
	}
	if win.EndsAt != nil {
		end = *win.EndsAt
	}
	return &Status{
		Week:       week,
		StartsAt:   win.StartsAt,
		EndsAt:     win.EndsAt,
		State:      ballot.WindowStateAt(now, start, end),
		Open:       ballot.WindowOpen(now, start, end),
		UntilOpen:  ballot.TimeUntilOpen(now, start, end),
		UntilClose: ballot.TimeUntilClose(now, start, end),
	}, nil
}

// CurrentStatus is StatusAt for the service clock.
func (s *ScheduleService) CurrentStatus(ctx context.Context) (*Status, error) {
	return s.StatusAt(ctx, s.now())
}
