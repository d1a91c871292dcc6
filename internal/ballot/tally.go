package ballot

import "sort"

// Result is one row of a week's tally: a display label and its vote count.
type Result struct {
	Choice string `json:"choice"`
	Count  int    `json:"count"`
}

// Tally aggregates raw vote choices against the current option set.
//
// Votes are grouped by normalized key. The result basis is the union rule:
// the normalized keys of currentChoices when the option set is non-empty,
// otherwise the keys actually present in votes (so a week whose options were
// later cleared still shows its tally). Every basis key appears in the
// output, zero-count options included. Display labels come from
// currentChoices when available; otherwise the normalized key itself is
// shown rather than an arbitrary vote's raw casing.
//
// Ordering is descending by count with ties keeping the basis order (stable
// sort), so repeated renders of identical data never reshuffle rows.
func Tally(currentChoices, votes []string) []Result {
	counts := make(map[string]int)
	voteOrder := make([]string, 0)
	for _, raw := range votes {
		k := NormalizeKey(raw)
		if k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			voteOrder = append(voteOrder, k)
		}
		counts[k]++
	}

	labelByKey := make(map[string]string, len(currentChoices))
	basis := make([]string, 0, len(currentChoices))
	if len(currentChoices) > 0 {
		for _, c := range currentChoices {
			k := NormalizeKey(c)
			if _, dup := labelByKey[k]; dup {
				continue
			}
			labelByKey[k] = c
			basis = append(basis, k)
		}
	} else {
		basis = voteOrder
	}

	out := make([]Result, 0, len(basis))
	for _, k := range basis {
		label, ok := labelByKey[k]
		if !ok {
			label = k
		}
		out = append(out, Result{Choice: label, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Percent converts a count into a display percentage, defined as 0 when the
// total is 0.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// PickWinner computes the winning choice for a week from the current option
// set and the raw vote choices.
//
// Only votes for options present in currentChoices count toward the decision;
// votes for since-removed options are ignored. When no votes survive that
// filter the total is 0 and no winner is returned; an empty outcome must
// never produce a decision. Ties break deterministically by the choice's
// position in currentChoices (lowest index wins).
//
// The returned tally is keyed by display label and includes every current
// choice, zero counts included, ready to be snapshotted into a WinnerRecord.
func PickWinner(currentChoices, votes []string) (name string, tally map[string]int, total int) {
	labelByKey := make(map[string]string, len(currentChoices))
	order := make([]string, 0, len(currentChoices))
	for _, c := range currentChoices {
		k := NormalizeKey(c)
		if _, dup := labelByKey[k]; dup {
			continue
		}
		labelByKey[k] = c
		order = append(order, k)
	}

	counts := make(map[string]int, len(order))
	for _, k := range order {
		counts[k] = 0
	}
	for _, raw := range votes {
		k := NormalizeKey(raw)
		if _, valid := counts[k]; !valid {
			continue
		}
		counts[k]++
		total++
	}
	if total == 0 {
		return "", nil, 0
	}

	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	winnerKey := ""
	for _, k := range order {
		if counts[k] == maxCount {
			winnerKey = k
			break
		}
	}

	tally = make(map[string]int, len(order))
	for _, k := range order {
		tally[labelByKey[k]] = counts[k]
	}
	return labelByKey[winnerKey], tally, total
}
