// Package services – WinnerService
//
// This file implements the winner decision state machine. Per week the state
// is NoWinner → Deciding → Decided, and Decided falls back to Deciding when
// the option set's updated_at advances past the stored decided_at (a stale
// winner: the admin changed the ballot after the decision). The decision
// itself is pure (ballot.PickWinner); this service wraps it with the epoch
// guard that keeps N concurrent deciders from each writing a winner.
//
// The guard is a conditional update: the winner columns are written only
// where no fresh winner exists (winner absent, or decided_at < updated_at).
// The store applies that statement atomically, so of all concurrent
// attempts in one epoch exactly one write survives; the losers observe zero
// affected rows, re-read, and return the winner that beat them. Conflicts
// are therefore invisible to callers, and re-invoking a decided epoch is a
// read-only no-op.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/ballot"
	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/repo"
)

// WinnerService decides and reports weekly winners.
type WinnerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives change events after a decision lands. Never nil.
	Hub notify.Publisher
	// Now returns the decision timestamp; overridable in tests.
	Now func() time.Time
}

// NewWinnerService constructs a WinnerService.
func NewWinnerService(db *gorm.DB, hub notify.Publisher) *WinnerService {
	return &WinnerService{DB: db, Hub: hub}
}

func (s *WinnerService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Get returns the decided winner for week, or ErrNoWinner when none exists
// or the existing one is stale. ErrOptionsNotFound when the week has no
// record at all.
func (s *WinnerService) Get(ctx context.Context, week string) (*domain.WinnerRecord, error) {
	row, err := repo.GetWeeklyOptions(ctx, s.DB, week)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOptionsNotFound
		}
		return nil, err
	}
	w := row.Winner()
	if w == nil || w.DecidedAt.Before(row.UpdatedAt) {
		return nil, ErrNoWinner
	}
	return w, nil
}

// NeedsDecision reports whether the decision trigger holds for week as far
// as the option record is concerned: winner absent or stale. The window-end
// half of the trigger belongs to the caller (the decider loop), which owns
// the clock.
func (s *WinnerService) NeedsDecision(ctx context.Context, week string) (bool, error) {
	row, err := repo.GetWeeklyOptions(ctx, s.DB, week)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	w := row.Winner()
	return w == nil || w.DecidedAt.Before(row.UpdatedAt), nil
}

// Decide computes and persists the winner for week, exactly once per epoch.
//
// Flow:
//  1. A fresh winner (decided_at >= updated_at) is returned as-is; no store
//     mutation happens.
//  2. The tally is computed over votes whose normalized choice is among the
//     current options. A total of zero is a hard no-op: ErrNoWinner, no
//     write. An empty vote set must never be promoted to a decision.
//  3. Ties break by position in the current choice order, lowest index wins.
//  4. The persist is the conditional write described in the package comment;
//     losing the race degrades to returning the other decider's record.
//
// The winner columns are written via merge: choices and updated_at are never
// touched, so deciding cannot itself open a new epoch.
func (s *WinnerService) Decide(ctx context.Context, week string) (*domain.WinnerRecord, error) {
	row, err := repo.GetWeeklyOptions(ctx, s.DB, week)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOptionsNotFound
		}
		return nil, err
	}
	if w := row.Winner(); w != nil && !w.DecidedAt.Before(row.UpdatedAt) {
		return w, nil
	}

	choices := ballot.CanonicalizeChoices(row.ChoiceList())
	votes, err := repo.ListVoteChoices(ctx, s.DB, week)
	if err != nil {
		return nil, err
	}
	name, tally, total := ballot.PickWinner(choices, votes)
	if total == 0 {
		return nil, ErrNoWinner
	}

	rec := &domain.WinnerRecord{
		Name:      name,
		Tally:     tally,
		DecidedAt: s.now(),
		Source:    domain.WinnerSourceAuto,
	}

	wrote, err := s.saveIfStale(ctx, week, rec)
	if err != nil {
		return nil, err
	}
	if !wrote {
		// Another decider won this epoch; its record is the winner.
		return s.Get(ctx, week)
	}

	log.Info().
		Str("week", week).
		Str("winner", rec.Name).
		Int("total_votes", total).
		Msg("winner decided")
	s.Hub.Publish(notify.Event{Topic: notify.TopicOptions, Week: week})
	return rec, nil
}

// saveIfStale performs the epoch-guarded winner write. It returns false when
// the guard rejected the write because a fresh winner already exists.
func (s *WinnerService) saveIfStale(ctx context.Context, week string, rec *domain.WinnerRecord) (bool, error) {
	carrier := domain.WeeklyOptions{}
	carrier.SetWinner(rec)
	res := s.DB.WithContext(ctx).Model(&domain.WeeklyOptions{}).
		Where("week = ?", week).
		Where("winner_decided_at IS NULL OR winner_decided_at < updated_at").
		Updates(map[string]any{
			"winner_name":       carrier.WinnerName,
			"winner_tally":      carrier.WinnerTally,
			"winner_decided_at": carrier.WinnerDecidedAt,
			"winner_source":     carrier.WinnerSource,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HistoryRow is one decided week, newest first, as rendered by the winners
// page and the CSV export.
type HistoryRow struct {
	Week       string    `json:"week"`
	Winner     string    `json:"winner"`
	DecidedAt  time.Time `json:"decided_at"`
	TotalVotes int       `json:"total_votes"`
	Choices    []string  `json:"choices"`
	Source     string    `json:"source"`
}

// History lists every week with a decided winner, newest decision first.
// Stale winners are included: history reports what was decided, the
// staleness contract only governs whether the decider recomputes.
func (s *WinnerService) History(ctx context.Context) ([]HistoryRow, error) {
	rows, err := repo.ListWeeklyOptions(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryRow, 0, len(rows))
	for _, row := range rows {
		w := row.Winner()
		if w == nil {
			continue
		}
		choices := ballot.CanonicalizeChoices(row.ChoiceList())
		if len(choices) == 0 {
			for c := range w.Tally {
				choices = append(choices, c)
			}
			sort.Strings(choices)
			choices = ballot.CanonicalizeChoices(choices)
		}
		out = append(out, HistoryRow{
			Week:       row.Week,
			Winner:     w.Name,
			DecidedAt:  w.DecidedAt,
			TotalVotes: w.TotalVotes(),
			Choices:    choices,
			Source:     w.Source,
		})
	}
	return out, nil
}

// csvHeader is the export's first row. Column names are part of the export
// contract; downstream spreadsheets key on them.
var csvHeader = []string{"Week", "Winner", "Decided At", "Total Votes", "Choices", "Source"}

// WriteHistoryCSV streams the winner history as CSV. Choices are joined with
// "; " into a single column; decided-at is RFC 3339 UTC.
func (s *WinnerService) WriteHistoryCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.History(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Week,
			r.Winner,
			r.DecidedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(r.TotalVotes),
			strings.Join(r.Choices, "; "),
			r.Source,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
