package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
	"PatternSentinel/internal/scanner"
)

// ScanTable renders the per-symbol scan outcome as a bare monospace table,
// suitable for the console log.
func ScanTable(report *scanner.Report) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Bars", "Matches", "Top Pattern", "Conf", "Error"})
	for _, res := range report.Results {
		top, conf := topMatch(res.Matches)
		errText := ""
		if res.Err != nil {
			errText = truncate(res.Err.Error(), 40)
		}
		t.AppendRow(table.Row{res.Symbol, res.Bars, len(res.Matches), top, conf, errText})
	}
	return t.Render()
}

// FormatScanReport wraps the scan table in <pre> so Telegram keeps the
// alignment.
func FormatScanReport(report *scanner.Report) string {
	summary := fmt.Sprintf("Scanned %d symbols in %s, %d matches",
		len(report.Results), report.Elapsed.Round(time.Millisecond), report.TotalMatches())
	return fmt.Sprintf("🔍 <b>%s</b>\n<pre>%s</pre>", summary, ScanTable(report))
}

func topMatch(matches []model.Match) (string, string) {
	if len(matches) == 0 {
		return "-", ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Confidence > best.Confidence {
			best = m
		}
	}
	return best.Pattern, fmt.Sprintf("%d%%", int(math.Round(best.Confidence*100)))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// FormatPatternList lists every registered detector with its description.
func FormatPatternList() string {
	var b strings.Builder
	b.WriteString("📐 <b>Registered patterns</b>\n\n")
	for _, name := range pattern.Names() {
		b.WriteString(fmt.Sprintf("• <b>%s</b>: %s\n", name, pattern.Get(name).Description()))
	}
	return b.String()
}

// FormatMatchDetail renders the caption for a symbol's chart: one line per
// match with confidence and date range.
func FormatMatchDetail(symbol string, matches []model.Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("<b>%s</b>: no patterns detected", symbol)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", symbol))
	for _, m := range matches {
		b.WriteString(fmt.Sprintf("%s %d%% (%s to %s)\n",
			m.Pattern, int(math.Round(m.Confidence*100)),
			m.Start.Format("2006-01-02"), m.End.Format("2006-01-02")))
	}
	return strings.TrimRight(b.String(), "\n")
}
