package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/repo"
)

func seedWeek(t *testing.T, svc *ScheduleService, week string, choices []string) {
	t.Helper()
	ctx := context.Background()
	if err := svc.SetCurrentWeek(ctx, week); err != nil {
		t.Fatalf("SetCurrentWeek: %v", err)
	}
	if len(choices) > 0 {
		if err := repo.SetChoices(ctx, svc.DB, week, choices); err != nil {
			t.Fatalf("SetChoices: %v", err)
		}
	}
}

func TestWinner_Decide_NoOptionsRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewWinnerService(db, notify.NopPublisher{})

	if _, err := svc.Decide(context.Background(), "2025-W10"); !errors.Is(err, ErrOptionsNotFound) {
		t.Fatalf("expected ErrOptionsNotFound, got %v", err)
	}
}

func TestWinner_Decide_ZeroVotes_NeverWrites(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Taco", "Burger"})

	if _, err := svc.Decide(ctx, "2025-W10"); !errors.Is(err, ErrNoWinner) {
		t.Fatalf("expected ErrNoWinner, got %v", err)
	}
	row, err := repo.GetWeeklyOptions(ctx, db, "2025-W10")
	if err != nil {
		t.Fatalf("GetWeeklyOptions: %v", err)
	}
	if row.Winner() != nil {
		t.Fatal("zero-vote decision must not persist a winner")
	}
}

func TestWinner_Decide_CountsAndZeroFills(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Taco", "Burger", "Ramen"})
	for i, choice := range []string{"Taco", "Taco", "Burger"} {
		if _, err := repo.CreateVote(ctx, db, fmt.Sprintf("u%d", i), "User", "u@calvada.com", choice, "2025-W10"); err != nil {
			t.Fatalf("seed vote: %v", err)
		}
	}

	rec, err := svc.Decide(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if rec.Name != "Taco" {
		t.Fatalf("winner = %q; want Taco", rec.Name)
	}
	if rec.Source != domain.WinnerSourceAuto {
		t.Fatalf("source = %q; want %q", rec.Source, domain.WinnerSourceAuto)
	}
	want := map[string]int{"Taco": 2, "Burger": 1, "Ramen": 0}
	for k, v := range want {
		if rec.Tally[k] != v {
			t.Fatalf("tally[%s] = %d; want %d (full: %v)", k, rec.Tally[k], v, rec.Tally)
		}
	}
	if rec.TotalVotes() != 3 {
		t.Fatalf("total = %d; want 3", rec.TotalVotes())
	}
}

func TestWinner_Decide_TieBreaksByChoiceOrder(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Burger", "Ramen"})
	if _, err := repo.CreateVote(ctx, db, "u1", "A", "a@calvada.com", "Ramen", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}
	if _, err := repo.CreateVote(ctx, db, "u2", "B", "b@calvada.com", "Burger", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	rec, err := svc.Decide(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if rec.Name != "Burger" {
		t.Fatalf("tie must break to first-listed choice; got %q", rec.Name)
	}
}

func TestWinner_Decide_IgnoresVotesOutsideCurrentOptions(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Taco"})
	// Vote for a choice that was since removed from the ballot.
	if _, err := repo.CreateVote(ctx, db, "u1", "A", "a@calvada.com", "Sushi", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	if _, err := svc.Decide(ctx, "2025-W10"); !errors.Is(err, ErrNoWinner) {
		t.Fatalf("orphan votes alone must not decide; got %v", err)
	}
}

func TestWinner_Decide_IdempotentWhileFresh(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Taco", "Burger"})
	if _, err := repo.CreateVote(ctx, db, "u1", "A", "a@calvada.com", "Taco", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	if _, err := svc.Decide(ctx, "2025-W10"); err != nil {
		t.Fatalf("first Decide: %v", err)
	}
	stored, err := svc.Get(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := svc.Decide(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("second Decide: %v", err)
	}
	if !stored.DecidedAt.Equal(second.DecidedAt) || stored.Name != second.Name {
		t.Fatalf("repeat Decide must return the stored record: %v vs %v", stored, second)
	}
}

func TestWinner_Decide_RecomputesAfterOptionsChange(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Taco", "Burger"})
	if _, err := repo.CreateVote(ctx, db, "u1", "A", "a@calvada.com", "Taco", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}
	first, err := svc.Decide(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("first Decide: %v", err)
	}

	// Ballot edit after the decision: the stored winner is stale.
	time.Sleep(5 * time.Millisecond)
	if err := repo.SetChoices(ctx, db, "2025-W10", []string{"Burger", "Taco", "Ramen"}); err != nil {
		t.Fatalf("SetChoices: %v", err)
	}
	if _, err := svc.Get(ctx, "2025-W10"); !errors.Is(err, ErrNoWinner) {
		t.Fatalf("stale winner must read as no winner, got %v", err)
	}

	second, err := svc.Decide(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("second Decide: %v", err)
	}
	if !second.DecidedAt.After(first.DecidedAt) {
		t.Fatalf("recompute must stamp a new decision (%v -> %v)", first.DecidedAt, second.DecidedAt)
	}
	if second.Tally["Ramen"] != 0 {
		t.Fatalf("new choice must appear in the tally: %v", second.Tally)
	}
}

func TestWinner_Decide_ConcurrentSingleWrite(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// Serialize connections; the guard's atomicity is the database's, the
	// point here is that N racing deciders agree on one record.
	sqlDB.SetMaxOpenConns(1)

	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	seedWeek(t, sched, "2025-W10", []string{"Taco", "Burger"})
	if _, err := repo.CreateVote(ctx, db, "u1", "A", "a@calvada.com", "Burger", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	recs := make([]*domain.WinnerRecord, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i], errs[i] = svc.Decide(ctx, "2025-W10")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("decider %d: %v", i, errs[i])
		}
		if recs[i].Name != "Burger" {
			t.Fatalf("decider %d returned %q; want Burger", i, recs[i].Name)
		}
	}
	stored, err := svc.Get(ctx, "2025-W10")
	if err != nil {
		t.Fatalf("Get after race: %v", err)
	}
	for i := 0; i < n; i++ {
		// Every decider must have observed the one persisted decision.
		if d := recs[i].DecidedAt.Sub(stored.DecidedAt); d < -time.Second || d > time.Second {
			t.Fatalf("decider %d saw decision at %v; store has %v", i, recs[i].DecidedAt, stored.DecidedAt)
		}
	}
}

func TestWinner_GetAndHistoryAndCSV(t *testing.T) {
	db := newTestDB(t)
	sched := NewScheduleService(db, notify.NopPublisher{})
	svc := NewWinnerService(db, notify.NopPublisher{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "2025-W09"); !errors.Is(err, ErrOptionsNotFound) {
		t.Fatalf("Get missing week: expected ErrOptionsNotFound, got %v", err)
	}

	seedWeek(t, sched, "2025-W10", []string{"Taco", "Burger"})
	if _, err := repo.CreateVote(ctx, db, "u1", "A", "a@calvada.com", "Taco", "2025-W10"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}
	if _, err := svc.Get(ctx, "2025-W10"); !errors.Is(err, ErrNoWinner) {
		t.Fatalf("Get before decision: expected ErrNoWinner, got %v", err)
	}
	if _, err := svc.Decide(ctx, "2025-W10"); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	got, err := svc.Get(ctx, "2025-W10")
	if err != nil || got.Name != "Taco" {
		t.Fatalf("Get after decision = %v, %v", got, err)
	}

	rows, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 || rows[0].Week != "2025-W10" || rows[0].Winner != "Taco" || rows[0].TotalVotes != 1 {
		t.Fatalf("History = %+v", rows)
	}

	var buf bytes.Buffer
	if err := svc.WriteHistoryCSV(ctx, &buf); err != nil {
		t.Fatalf("WriteHistoryCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d; want 2\n%s", len(lines), buf.String())
	}
	if lines[0] != "Week,Winner,Decided At,Total Votes,Choices,Source" {
		t.Fatalf("csv header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2025-W10,Taco,") || !strings.Contains(lines[1], "Taco; Burger") {
		t.Fatalf("csv row = %q", lines[1])
	}
}
