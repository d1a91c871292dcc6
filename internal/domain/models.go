// Package domain defines the persistence models for the weekly lunch vote:
// weekly option sets (with the embedded decided winner), individual votes,
// the menu pool, administrator membership, and the two singleton
// configuration rows (current week, voting window). These types are mapped
// with GORM and form the core data layer of the application.
package domain

import (
	"encoding/json"
	"time"
)

// Winner sources. Only the programmatic decision path exists today; the
// constant set leaves room for a manual override without a schema change.
const (
	WinnerSourceAuto   = "auto"
	WinnerSourceManual = "manual"
)

// Singleton row ID used by CurrentWeek and VotingWindow.
const SingletonID = 1

// WeeklyOptions is the per-week record holding the candidate choices and,
// embedded, the decided winner. The week key is the primary key, so there is
// exactly one row per voting cycle.
//
// Fields:
//   - Week: the week key, e.g. "2025-W43". Primary key.
//   - Choices: JSON-encoded ordered list of display strings. Stored as a
//     single column so a partial update can never interleave with the winner
//     columns.
//   - UpdatedAt: timestamp of the last options mutation. Managed explicitly
//     by the repo layer (autoUpdateTime disabled) because it defines the
//     winner epoch: a winner with DecidedAt < UpdatedAt is stale.
//   - WinnerName / WinnerTally / WinnerDecidedAt / WinnerSource: the decided
//     winner, flattened into nullable columns. All nil/empty until a decision
//     is persisted.
type WeeklyOptions struct {
	Week            string     `json:"week"       gorm:"type:varchar(16);primaryKey"`
	Choices         string     `json:"-"          gorm:"type:text;not null;default:'[]'"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime:false"`
	WinnerName      *string    `json:"-"          gorm:"type:varchar(255)"`
	WinnerTally     *string    `json:"-"          gorm:"type:text"`
	WinnerDecidedAt *time.Time `json:"-"`
	WinnerSource    string     `json:"-"          gorm:"type:varchar(16);not null;default:''"`
}

// TableName returns the database table name for WeeklyOptions.
func (WeeklyOptions) TableName() string { return "weekly_options" }

// ChoiceList decodes the stored choices column. A malformed or empty column
// yields an empty list, never an error: stored payloads predating the
// canonicalizer may be missing or odd-shaped, and callers treat both as
// "no options configured".
func (w *WeeklyOptions) ChoiceList() []string {
	if w == nil || w.Choices == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(w.Choices), &out); err == nil {
		return out
	}
	// Tolerate a keyed-object payload ({"0":"Pizza",...}) from older writers.
	var m map[string]string
	if err := json.Unmarshal([]byte(w.Choices), &m); err == nil {
		out = make([]string, 0, len(m))
		for _, v := range m {
			out = append(out, v)
		}
		return out
	}
	return nil
}

// SetChoiceList encodes choices into the stored column.
func (w *WeeklyOptions) SetChoiceList(choices []string) {
	if choices == nil {
		choices = []string{}
	}
	b, _ := json.Marshal(choices)
	w.Choices = string(b)
}

// WinnerRecord is the decided winner embedded in a WeeklyOptions row.
//
// Lifecycle: created once the voting window closes and the week has at least
// one counted vote; considered stale (and recomputed) when DecidedAt predates
// the owning row's UpdatedAt. Never created for a zero-vote week.
type WinnerRecord struct {
	Name      string         `json:"name"`
	Tally     map[string]int `json:"tally"`
	DecidedAt time.Time      `json:"decided_at"`
	Source    string         `json:"source"`
}

// Winner reassembles the flattened winner columns, or nil when no winner has
// been decided for this row.
func (w *WeeklyOptions) Winner() *WinnerRecord {
	if w == nil || w.WinnerName == nil || *w.WinnerName == "" || w.WinnerDecidedAt == nil {
		return nil
	}
	rec := &WinnerRecord{
		Name:      *w.WinnerName,
		Tally:     map[string]int{},
		DecidedAt: *w.WinnerDecidedAt,
		Source:    w.WinnerSource,
	}
	if w.WinnerTally != nil && *w.WinnerTally != "" {
		_ = json.Unmarshal([]byte(*w.WinnerTally), &rec.Tally)
	}
	return rec
}

// SetWinner flattens rec into the winner columns. A nil rec clears them.
func (w *WeeklyOptions) SetWinner(rec *WinnerRecord) {
	if rec == nil {
		w.WinnerName = nil
		w.WinnerTally = nil
		w.WinnerDecidedAt = nil
		w.WinnerSource = ""
		return
	}
	name := rec.Name
	decidedAt := rec.DecidedAt
	b, _ := json.Marshal(rec.Tally)
	tally := string(b)
	w.WinnerName = &name
	w.WinnerTally = &tally
	w.WinnerDecidedAt = &decidedAt
	w.WinnerSource = rec.Source
}

// TotalVotes sums the snapshot tally. Used by winner history and CSV export.
func (r *WinnerRecord) TotalVotes() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, n := range r.Tally {
		total += n
	}
	return total
}

// Vote is one voter's immutable choice for one week.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: opaque voter identity from the identity provider.
//   - UserName / UserEmail: denormalized display fields captured at
//     submission time (the voters admin page renders them without a join).
//   - Choice: the display string as submitted; normalization happens at
//     tally time, not at write time.
//   - Week: week key the vote belongs to. Indexed for tally queries.
//   - CreatedAt: submission timestamp.
//
// The (user_id, week) unique index backs the one-vote-per-user-per-week rule.
// The service layer still pre-checks before inserting so the common case is a
// friendly rejection rather than a constraint error.
type Vote struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_vote_user_week"`
	UserName  string    `json:"user_name"  gorm:"type:varchar(255)"`
	UserEmail string    `json:"user_email" gorm:"type:varchar(255)"`
	Choice    string    `json:"choice"     gorm:"type:varchar(255);not null"`
	Week      string    `json:"week"       gorm:"type:varchar(16);not null;index:idx_vote_week;uniqueIndex:ux_vote_user_week"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// MenuItem is an entry in the admin-curated menu pool that weekly options are
// regenerated from. NameKey holds the normalized form and carries the unique
// index, so "Pizza" and "pizza " cannot coexist.
type MenuItem struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	NameKey   string    `json:"-"    gorm:"type:varchar(255);not null;uniqueIndex:ux_menu_name_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for MenuItem.
func (MenuItem) TableName() string { return "menu_items" }

// Admin is an administrator membership record, keyed by lowercased email.
type Admin struct {
	Email     string    `json:"email" gorm:"type:varchar(255);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Admin.
func (Admin) TableName() string { return "admins" }

// CurrentWeek is the singleton row naming the active voting cycle. An empty
// Value means no active cycle: voting and tallying render a neutral state
// until an admin sets it. There is deliberately no calendar fallback.
type CurrentWeek struct {
	ID        int       `json:"-"     gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"type:varchar(16);not null;default:''"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for CurrentWeek.
func (CurrentWeek) TableName() string { return "current_week" }

// VotingWindow is the singleton row gating vote submission. It is global, not
// versioned per week: one window config applies to whichever week is active.
// Nil endpoints mean the window has never been configured and voting is
// closed.
type VotingWindow struct {
	ID        int        `json:"-"     gorm:"primaryKey"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the database table name for VotingWindow.
func (VotingWindow) TableName() string { return "voting_window" }
