// Package decider runs the background loop that turns an ended voting window
// into a decided winner.
//
// The loop wakes on a fixed ticker and on change events from the notify hub
// (window edits, new votes, option changes), evaluates the trigger (window
// ended, and the current week's winner absent or stale) and invokes the
// winner service when it holds. The service's epoch guard makes the decision
// exactly-once, so running several replicas of this loop is safe; the loop
// only has to be prompt, not exclusive.
package decider

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/calvada/lunchvote/internal/ballot"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/services"
)

// DefaultInterval is the ticker period when none is configured. One second
// keeps the decision within a tick of the window end without meaningfully
// loading the store.
const DefaultInterval = time.Second

// Decider owns the evaluation loop.
type Decider struct {
	// Schedule answers "which week" and "has the window ended".
	Schedule *services.ScheduleService
	// Winner performs the guarded decision.
	Winner *services.WinnerService
	// Hub supplies wake-up events between ticks. Optional; nil means
	// tick-only operation.
	Hub *notify.Hub
	// Interval is the ticker period; zero means DefaultInterval.
	Interval time.Duration
	// Now returns the evaluation clock; overridable in tests.
	Now func() time.Time
}

// New constructs a Decider with the default interval.
func New(sched *services.ScheduleService, winner *services.WinnerService, hub *notify.Hub) *Decider {
	return &Decider{Schedule: sched, Winner: winner, Hub: hub, Interval: DefaultInterval}
}

func (d *Decider) interval() time.Duration {
	if d.Interval > 0 {
		return d.Interval
	}
	return DefaultInterval
}

func (d *Decider) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// Run blocks until ctx is cancelled, evaluating the decision trigger on
// every tick and on every relevant hub event. Evaluation errors are logged
// and do not stop the loop.
func (d *Decider) Run(ctx context.Context) {
	var events <-chan notify.Event
	if d.Hub != nil {
		ch, cancel := d.Hub.Subscribe(
			notify.TopicWeek,
			notify.TopicWindow,
			notify.TopicOptions,
			notify.TopicVotes,
		)
		defer cancel()
		events = ch
	}

	ticker := time.NewTicker(d.interval())
	defer ticker.Stop()

	log.Info().Dur("interval", d.interval()).Msg("decider loop started")
	for {
		d.evaluate(ctx)
		select {
		case <-ctx.Done():
			log.Info().Msg("decider loop stopped")
			return
		case <-ticker.C:
		case <-events:
		}
	}
}

// evaluate runs one pass of the trigger check.
func (d *Decider) evaluate(ctx context.Context) {
	status, err := d.Schedule.StatusAt(ctx, d.now())
	if err != nil {
		log.Error().Err(err).Msg("decider: schedule status")
		return
	}
	if status.Week == "" || status.State != ballot.StateEnded {
		return
	}

	needs, err := d.Winner.NeedsDecision(ctx, status.Week)
	if err != nil {
		log.Error().Err(err).Str("week", status.Week).Msg("decider: staleness check")
		return
	}
	if !needs {
		return
	}

	if _, err := d.Winner.Decide(ctx, status.Week); err != nil {
		switch {
		case errors.Is(err, services.ErrNoWinner):
			// Ended window with no counted votes: nothing to decide. Stay
			// quiet; this re-evaluates every tick.
		case errors.Is(err, services.ErrOptionsNotFound):
			log.Debug().Str("week", status.Week).Msg("decider: week has no options record")
		default:
			log.Error().Err(err).Str("week", status.Week).Msg("decider: decide failed")
		}
	}
}
