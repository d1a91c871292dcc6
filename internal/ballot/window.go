package ballot

import "time"

// WindowState classifies "now" against a voting window.
type WindowState string

const (
	// StateUnset means the window has never been configured.
	StateUnset WindowState = "unset"
	// StateBefore means voting has not opened yet.
	StateBefore WindowState = "before"
	// StateOpen means votes are currently accepted.
	StateOpen WindowState = "open"
	// StateEnded means the window has closed.
	StateEnded WindowState = "ended"
)

// WindowOpen reports whether votes are accepted at the given instant.
// The window is inclusive at both ends: start <= now <= end. Zero endpoints
// mean the window is not configured and voting is closed.
func WindowOpen(now, start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !now.Before(start) && !now.After(end)
}

// WindowStateAt classifies now against the window endpoints.
func WindowStateAt(now, start, end time.Time) WindowState {
	switch {
	case start.IsZero() || end.IsZero():
		return StateUnset
	case now.Before(start):
		return StateBefore
	case now.After(end):
		return StateEnded
	default:
		return StateOpen
	}
}

// TimeUntilOpen returns how long until the window opens, or 0 when it is
// already open, already over, or unset.
func TimeUntilOpen(now, start, end time.Time) time.Duration {
	if start.IsZero() || end.IsZero() || !now.Before(start) {
		return 0
	}
	return start.Sub(now)
}

// TimeUntilClose returns how long until the window closes, or 0 when it is
// already closed or unset. While the window has not opened yet this still
// counts down to the end, matching the admin timer display.
func TimeUntilClose(now, start, end time.Time) time.Duration {
	if start.IsZero() || end.IsZero() || now.After(end) {
		return 0
	}
	return end.Sub(now)
}
