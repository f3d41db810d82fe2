// Package alert turns scan results into Telegram-ready alert lines.
package alert

import (
	"fmt"
	"math"
	"sort"
	"time"

	"PatternSentinel/internal/model"
)

// FilterActive keeps only matches whose pattern window ended within the
// active window relative to now. Symbols left without matches are dropped.
func FilterActive(results map[string][]model.Match, now time.Time) map[string][]model.Match {
	active := make(map[string][]model.Match)
	for symbol, matches := range results {
		for _, m := range matches {
			if m.IsActiveOn(now) {
				active[symbol] = append(active[symbol], m)
			}
		}
	}
	return active
}

// Messages renders one alert line per (symbol, match). Symbols are visited
// in sorted order so the output is stable; matches keep their given order.
func Messages(active map[string][]model.Match) []string {
	symbols := make([]string, 0, len(active))
	for symbol := range active {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var out []string
	for _, symbol := range symbols {
		for _, m := range active[symbol] {
			out = append(out, fmt.Sprintf("🚨 <b>%s</b> on <b>%s</b> | Confidence %d%% | %s",
				m.Pattern, symbol, int(math.Round(m.Confidence*100)), m.Description))
		}
	}
	return out
}
