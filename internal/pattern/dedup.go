package pattern

import (
	"sort"

	"PatternSentinel/internal/model"
)

// Deduplicate resolves overlapping matches from one detector greedily:
// matches are taken in descending confidence order (stable for ties) and
// kept only when their date range does not strictly overlap an already
// kept match. Ranges that merely touch at an endpoint do not overlap.
//
// Greedy selection is not globally optimal: one high-confidence match
// can displace two disjoint lower-confidence ones. Mutually disjoint
// inputs all survive.
func Deduplicate(matches []model.Match) []model.Match {
	if len(matches) <= 1 {
		return matches
	}
	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var kept []model.Match
	for _, m := range sorted {
		overlaps := false
		for _, k := range kept {
			if overlap(m, k) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}
	return kept
}

func overlap(a, b model.Match) bool {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return start.Before(end)
}
