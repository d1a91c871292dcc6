// Package services defines the business logic for the weekly lunch vote:
// schedule (current week + voting window), weekly options, vote casting,
// winner decision, menu pool, and administrator membership. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Schedule-related errors.
var (
	// ErrWeekNotSet indicates no active voting cycle: the admin has not set
	// the current week. Dependent reads render a neutral state.
	ErrWeekNotSet = errors.New("current week is not set")

	// ErrInvalidWeekKey is returned when a week key does not match the
	// YYYY-Www format.
	ErrInvalidWeekKey = errors.New("week key must match YYYY-Www")

	// ErrInvalidWindow is returned when a voting window's end does not come
	// after its start.
	ErrInvalidWindow = errors.New("window end must be after start")
)

// Options-related errors.
var (
	// ErrOptionsNotFound indicates the referenced week has no options record.
	ErrOptionsNotFound = errors.New("weekly options not found")

	// ErrNoChoices is returned when a choice list is empty after
	// canonicalization.
	ErrNoChoices = errors.New("choices must contain at least one entry")

	// ErrNotEnoughMenuItems is returned when the menu pool is too small to
	// regenerate a week's options.
	ErrNotEnoughMenuItems = errors.New("not enough menu items to regenerate options")

	// ErrVotesExist is returned when an admin attempts to regenerate options
	// for a week that already has votes.
	ErrVotesExist = errors.New("cannot regenerate options after voting has started")

	// ErrChoiceNotFound is returned when removing a choice that is not part
	// of the week's options.
	ErrChoiceNotFound = errors.New("choice not found in weekly options")
)

// Vote-related errors.
var (
	// ErrVotingClosed is returned when a vote arrives outside the window.
	ErrVotingClosed = errors.New("voting is closed")

	// ErrAlreadyVoted is returned when the user already voted this week.
	ErrAlreadyVoted = errors.New("already voted this week")

	// ErrUnknownChoice is returned when a vote names an option that is not
	// among the current week's choices.
	ErrUnknownChoice = errors.New("choice is not among this week's options")

	// ErrEmailDomain is returned when the voter's email is outside the
	// allowed domain.
	ErrEmailDomain = errors.New("email domain is not allowed to vote")

	// ErrVoteNotFound indicates the caller has no vote for the week.
	ErrVoteNotFound = errors.New("vote not found")
)

// Winner-related errors.
var (
	// ErrNoWinner indicates no winner exists (or can exist) for the week:
	// either the window has not ended or the week has no counted votes. A
	// zero-vote week never yields a winner.
	ErrNoWinner = errors.New("no winner decided for this week")
)

// Menu and admin membership errors.
var (
	// ErrDuplicateMenuItem is returned when adding or renaming a menu item
	// would collide with an existing one under normalization.
	ErrDuplicateMenuItem = errors.New("menu item already exists")

	// ErrMenuItemNotFound indicates the referenced menu item does not exist.
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrInvalidMenuItem is returned when a menu item name is blank.
	ErrInvalidMenuItem = errors.New("menu item name is empty")

	// ErrAdminExists is returned when adding an email that is already an
	// administrator.
	ErrAdminExists = errors.New("admin already exists")

	// ErrAdminNotFound indicates the referenced administrator does not exist.
	ErrAdminNotFound = errors.New("admin not found")

	// ErrInvalidEmail is returned for blank or malformed admin emails.
	ErrInvalidEmail = errors.New("invalid email address")
)
