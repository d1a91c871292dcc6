package ballot

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// weekKeyRE matches the ISO-style week keys the admin UI accepts,
// e.g. "2025-W43".
var weekKeyRE = regexp.MustCompile(`^(20\d{2})-W(\d{2})$`)

// ValidWeekKey reports whether s is a well-formed week key (YYYY-Www).
func ValidWeekKey(s string) bool {
	m := weekKeyRE.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	ww, _ := strconv.Atoi(m[2])
	return ww >= 1 && ww <= 53
}

// NextWeekKey returns the week key for the ISO week following week.
// Year rollovers are handled by the ISO calendar (a 2025-W52 → 2026-W01
// advance is as valid as a mid-year one).
func NextWeekKey(week string) (string, error) {
	m := weekKeyRE.FindStringSubmatch(week)
	if m == nil {
		return "", fmt.Errorf("invalid week key %q", week)
	}
	year, _ := strconv.Atoi(m[1])
	ww, _ := strconv.Atoi(m[2])
	if ww < 1 || ww > 53 {
		return "", fmt.Errorf("invalid week key %q", week)
	}

	// Jan 4 is always inside ISO week 1. Walk back to its Monday, advance
	// ww weeks (ww-1 to reach the given week, plus one more).
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -int((jan4.Weekday()+6)%7))
	next := monday.AddDate(0, 0, ww*7)

	y, w := next.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w), nil
}
