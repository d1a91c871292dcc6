// Package services – OptionsService
//
// This file implements the OptionsService, which manages the per-week option
// set. It canonicalizes admin input, enforces the regeneration rules (menu
// pool minimum, no regeneration once votes exist), and builds display tallies
// for a week. All writes go through the repo's merge discipline: choice
// writes bump updated_at and never touch the winner columns.
package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/ballot"
	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/repo"
)

// DefaultMinChoices is the smallest menu pool that Regenerate will sample
// from, and the number of options it picks.
const DefaultMinChoices = 4

// WeekOptions is the service-level view of a week's option record.
type WeekOptions struct {
	Week      string               `json:"week"`
	Choices   []string             `json:"choices"`
	UpdatedAt int64                `json:"updated_at_ms"`
	Winner    *domain.WinnerRecord `json:"winner,omitempty"`
}

// TallyView is a week's aggregated results for display.
type TallyView struct {
	Week       string     `json:"week"`
	Results    []TallyRow `json:"results"`
	TotalVotes int        `json:"total_votes"`
}

// TallyRow is one display row: label, count, percentage.
type TallyRow struct {
	Choice  string  `json:"choice"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// OptionsService provides weekly-option reads and admin mutations.
type OptionsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives change events after successful writes. Never nil.
	Hub notify.Publisher
	// MinChoices is the regeneration pool minimum; zero means
	// DefaultMinChoices.
	MinChoices int
	// pick allows tests to pin the regeneration sample. Nil uses a random
	// permutation, like the original admin action.
	pick func(pool []string, n int) []string
}

// NewOptionsService constructs an OptionsService with defaults.
func NewOptionsService(db *gorm.DB, hub notify.Publisher) *OptionsService {
	return &OptionsService{DB: db, Hub: hub, MinChoices: DefaultMinChoices}
}

func (s *OptionsService) minChoices() int {
	if s.MinChoices > 0 {
		return s.MinChoices
	}
	return DefaultMinChoices
}

// Get returns the option record for week, canonicalized for display.
// ErrOptionsNotFound when the week has no record.
func (s *OptionsService) Get(ctx context.Context, week string) (*WeekOptions, error) {
	row, err := repo.GetWeeklyOptions(ctx, s.DB, week)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOptionsNotFound
		}
		return nil, err
	}
	return &WeekOptions{
		Week:      row.Week,
		Choices:   ballot.CanonicalizeChoices(row.ChoiceList()),
		UpdatedAt: row.UpdatedAt.UnixMilli(),
		Winner:    row.Winner(),
	}, nil
}

// SetChoices replaces the option set for week with the canonicalized input.
// An input that canonicalizes to nothing is rejected: a week that should
// have no options is expressed by not configuring it, not by blanking it.
func (s *OptionsService) SetChoices(ctx context.Context, week string, choices []string) ([]string, error) {
	week = strings.TrimSpace(week)
	if !ballot.ValidWeekKey(week) {
		return nil, ErrInvalidWeekKey
	}
	clean := ballot.CanonicalizeChoices(choices)
	if len(clean) == 0 {
		return nil, ErrNoChoices
	}
	if err := repo.SetChoices(ctx, s.DB, week, clean); err != nil {
		return nil, err
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicOptions, Week: week})
	return clean, nil
}

// RemoveChoice drops one option (matched by normalized key) from the week's
// set. Removing the last option is allowed (the tally falls back to vote
// keys), but the removal still bumps updated_at and so restarts the epoch.
func (s *OptionsService) RemoveChoice(ctx context.Context, week, choice string) ([]string, error) {
	cur, err := s.Get(ctx, week)
	if err != nil {
		return nil, err
	}
	key := ballot.NormalizeKey(choice)
	kept := make([]string, 0, len(cur.Choices))
	for _, c := range cur.Choices {
		if ballot.NormalizeKey(c) == key {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == len(cur.Choices) {
		return nil, ErrChoiceNotFound
	}
	if err := repo.SetChoices(ctx, s.DB, week, kept); err != nil {
		return nil, err
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicOptions, Week: week})
	return kept, nil
}

// Regenerate replaces the week's options with a random sample of MinChoices
// items from the menu pool.
//
// Guards, in order: the week key must be valid; the pool must hold at least
// MinChoices items; and the week must have no votes yet, because options are the
// ballot, and the ballot does not change under voters who already used it.
func (s *OptionsService) Regenerate(ctx context.Context, week string) ([]string, error) {
	week = strings.TrimSpace(week)
	if !ballot.ValidWeekKey(week) {
		return nil, ErrInvalidWeekKey
	}

	voted, err := repo.HasVotesForWeek(ctx, s.DB, week)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrVotesExist
	}

	items, err := repo.ListMenuItems(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	pool := make([]string, 0, len(items))
	for _, it := range items {
		pool = append(pool, it.Name)
	}
	pool = ballot.CanonicalizeChoices(pool)
	n := s.minChoices()
	if len(pool) < n {
		return nil, ErrNotEnoughMenuItems
	}

	picked := s.sample(pool, n)
	if err := repo.SetChoices(ctx, s.DB, week, picked); err != nil {
		return nil, err
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicOptions, Week: week})
	return picked, nil
}

func (s *OptionsService) sample(pool []string, n int) []string {
	if s.pick != nil {
		return s.pick(pool, n)
	}
	idx := rand.Perm(len(pool))
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

// Tally aggregates the week's votes against its current options. A missing
// option record is not an error: the tally is built from vote keys alone, so
// a cleared week still shows its historical counts.
func (s *OptionsService) Tally(ctx context.Context, week string) (*TallyView, error) {
	var choices []string
	if opts, err := s.Get(ctx, week); err == nil {
		choices = opts.Choices
	} else if !errors.Is(err, ErrOptionsNotFound) {
		return nil, err
	}

	votes, err := repo.ListVoteChoices(ctx, s.DB, week)
	if err != nil {
		return nil, err
	}

	results := ballot.Tally(choices, votes)
	total := len(votes)
	rows := make([]TallyRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, TallyRow{
			Choice:  r.Choice,
			Count:   r.Count,
			Percent: ballot.Percent(r.Count, total),
		})
	}
	return &TallyView{Week: week, Results: rows, TotalVotes: total}, nil
}
