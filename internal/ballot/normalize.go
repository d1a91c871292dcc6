// Package ballot contains the pure computational core of the weekly lunch
// vote: choice normalization, vote tallying, winner selection, the voting
// window guard, and week-key arithmetic. Everything in this package is a
// synchronous function over in-memory snapshots; persistence and
// subscriptions stay in the repo and service layers so the decision logic is
// testable without a live store.
package ballot

import (
	"regexp"
	"strings"
)

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeKey canonicalizes a free-text choice label into a comparable key:
// surrounding whitespace trimmed, internal whitespace runs collapsed to one
// space, lowercased. This is the single place where casing and whitespace
// divergence between admin-entered options and voter-submitted choices is
// resolved; without it "Pizza" and "pizza " would tally separately.
func NormalizeKey(s string) string {
	return strings.ToLower(whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " "))
}

// CanonicalizeChoices cleans a raw choice list into an ordered set of display
// strings: entries are trimmed, empties dropped, and duplicates under
// NormalizeKey removed. First occurrence wins both position and display
// casing. The result is used for rendering and as the tally key basis.
func CanonicalizeChoices(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		display := whitespaceRE.ReplaceAllString(strings.TrimSpace(v), " ")
		if display == "" {
			continue
		}
		key := strings.ToLower(display)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, display)
	}
	return out
}
