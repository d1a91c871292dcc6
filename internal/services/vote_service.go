// Package services – VoteService
//
// This file implements the VoteService, which governs vote submission and
// vote queries. Submission is gated by the voting window, the active week,
// the current option set, and the allowed email domain. The one-vote-per-
// user-per-week rule is enforced by a pre-check before the insert; the
// unique (user_id, week) index behind it catches the race where the same
// user submits twice at once, and that residual constraint error maps to the
// same ErrAlreadyVoted the pre-check produces. Closing the window never
// invalidates votes that were already cast.
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

// Voter is the identity attached to a cast vote, as resolved by the identity
// layer at the transport boundary.
type Voter struct {
	ID    string
	Name  string
	Email string
}

// VoteService implements the use-cases around vote records.
type VoteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives change events after successful writes. Never nil.
	Hub notify.Publisher
	// Schedule answers window/week questions for the submission gate.
	Schedule *ScheduleService
	// Options resolves the current choice set for validation.
	Options *OptionsService
	// AllowedEmailDomain restricts voting to one email domain (with the
	// leading "@", e.g. "@calvada.com"). Empty disables the check.
	AllowedEmailDomain string
}

// Cast records one vote for the active week on behalf of voter.
//
// Gate order mirrors the original submission flow: window open → week set →
// email domain → choice among current options → not already voted.
func (s *VoteService) Cast(ctx context.Context, voter Voter, choice string) (*domain.Vote, error) {
	status, err := s.Schedule.CurrentStatus(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Open {
		return nil, ErrVotingClosed
	}
	if status.Week == "" {
		return nil, ErrWeekNotSet
	}

	if s.AllowedEmailDomain != "" &&
		!strings.HasSuffix(strings.ToLower(voter.Email), strings.ToLower(s.AllowedEmailDomain)) {
		return nil, ErrEmailDomain
	}

	opts, err := s.Options.Get(ctx, status.Week)
	if err != nil {
		if errors.Is(err, ErrOptionsNotFound) {
			return nil, ErrUnknownChoice
		}
		return nil, err
	}
	key := ballot.NormalizeKey(choice)
	display := ""
	for _, c := range opts.Choices {
		if ballot.NormalizeKey(c) == key {
			display = c
			break
		}
	}
	if display == "" {
		return nil, ErrUnknownChoice
	}

	voted, err := repo.HasVoteForUserWeek(ctx, s.DB, voter.ID, status.Week)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadyVoted
	}

	v, err := repo.CreateVote(ctx, s.DB, voter.ID, voter.Name, voter.Email, display, status.Week)
	if err != nil {
		if isDuplicate(err) {
			// Lost the pre-check race; same outcome as the check firing.
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	log.Info().Str("week", status.Week).Str("choice", display).Msg("vote cast")
	s.Hub.Publish(notify.Event{Topic: notify.TopicVotes, Week: status.Week})
	return v, nil
}

// HasVoted reports whether userID already voted in week.
func (s *VoteService) HasVoted(ctx context.Context, userID, week string) (bool, error) {
	return repo.HasVoteForUserWeek(ctx, s.DB, userID, week)
}

// HasVotes reports whether any votes exist for week. This is the query the
// admin boundary uses to block option regeneration.
func (s *VoteService) HasVotes(ctx context.Context, week string) (bool, error) {
	return repo.HasVotesForWeek(ctx, s.DB, week)
}

// MyVote returns the caller's vote for week, or ErrVoteNotFound.
func (s *VoteService) MyVote(ctx context.Context, userID, week string) (*domain.Vote, error) {
	v, err := repo.GetVoteForUserWeek(ctx, s.DB, userID, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListPage returns a page of the week's votes plus the total count.
// Defaults are applied for invalid page/pageSize.
func (s *VoteService) ListPage(ctx context.Context, week string, page, pageSize int) ([]domain.Vote, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	total, err := repo.CountVotesForWeek(ctx, s.DB, week)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Vote{}, 0, nil
	}
	items, err := repo.ListVotesPage(ctx, s.DB, week, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ResetAll deletes every vote across all weeks and reports how many rows
// went. Admin-only, irreversible, and deliberately loud in the log.
func (s *VoteService) ResetAll(ctx context.Context) (int64, error) {
	n, err := repo.DeleteAllVotes(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	log.Warn().Int64("deleted", n).Msg("all votes reset")
	s.Hub.Publish(notify.Event{Topic: notify.TopicVotes})
	return n, nil
}
