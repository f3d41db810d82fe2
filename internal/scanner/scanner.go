package scanner

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

// concurrent symbol fetches per scan
const fetchParallelism = 4

// SymbolResult holds the detection outcome for one symbol. Err carries a
// fetch or validation failure; the match list is empty in that case.
type SymbolResult struct {
	Symbol  string
	Bars    int
	Matches []model.Match
	Err     error
}

// Report is the outcome of one scan over a symbol list. Results are in the
// same order as the scanned symbols.
type Report struct {
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []SymbolResult
}

// Err aggregates the per-symbol errors, nil when every symbol succeeded.
func (r *Report) Err() error {
	var err error
	for _, res := range r.Results {
		if res.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", res.Symbol, res.Err))
		}
	}
	return err
}

// TotalMatches counts matches across all symbols.
func (r *Report) TotalMatches() int {
	total := 0
	for _, res := range r.Results {
		total += len(res.Matches)
	}
	return total
}

// ActiveMatches counts matches still active relative to now.
func (r *Report) ActiveMatches(now time.Time) int {
	total := 0
	for _, res := range r.Results {
		for _, m := range res.Matches {
			if m.IsActiveOn(now) {
				total++
			}
		}
	}
	return total
}

// Scanner runs the enabled detectors over collected series.
type Scanner struct {
	Collector *collector.Collector
	detectors []pattern.Detector
}

// New resolves the enabled detector names through the registry. An empty
// list enables every registered detector. Unknown names are logged and
// skipped; config validation rejects them before a scanner is built, so a
// skip here only happens for hand-constructed scanners.
func New(c *collector.Collector, enabled []string) *Scanner {
	var detectors []pattern.Detector
	if len(enabled) == 0 {
		detectors = pattern.All()
	} else {
		for _, name := range enabled {
			d := pattern.Get(name)
			if d == nil {
				log.Warnf("unknown detector %q skipped", name)
				continue
			}
			detectors = append(detectors, d)
		}
	}
	return &Scanner{Collector: c, detectors: detectors}
}

// Detectors returns the enabled detectors in scan order.
func (s *Scanner) Detectors() []pattern.Detector {
	return s.detectors
}

// ScanSymbol fetches one symbol and runs every enabled detector over it.
// A fetch or validation failure is returned inside the result; detectors
// themselves never fail.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string) SymbolResult {
	res := SymbolResult{Symbol: symbol}
	series, err := s.Collector.GetSeries(ctx, symbol)
	if err != nil {
		res.Err = err
		return res
	}
	res.Bars = series.Len()
	for _, d := range s.detectors {
		res.Matches = append(res.Matches, d.Detect(series)...)
	}
	return res
}

// ScanAll scans the symbols concurrently. Results keep the input order, and
// one symbol's failure never aborts the others.
func (s *Scanner) ScanAll(ctx context.Context, symbols []string) *Report {
	report := &Report{
		StartedAt: time.Now(),
		Results:   make([]SymbolResult, len(symbols)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			report.Results[i] = s.ScanSymbol(gctx, symbol)
			return nil
		})
	}
	_ = g.Wait() // workers always return nil

	report.Elapsed = time.Since(report.StartedAt)
	log.Infof("scan finished: %d symbols, %d matches in %s",
		len(symbols), report.TotalMatches(), report.Elapsed.Round(time.Millisecond))
	return report
}
