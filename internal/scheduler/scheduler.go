package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"PatternSentinel/internal/alert"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/notifier"
	"PatternSentinel/internal/render"
	"PatternSentinel/internal/scanner"
)

// maxChartsPerScan caps the photo uploads per scheduled scan.
const maxChartsPerScan = 3

// Scheduler owns the cron loop and the Telegram command surface.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Notifier notifier.Notifier
	Symbols  []string
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, n notifier.Notifier, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: n,
		Symbols:  symbols,
		Ctx:      ctx,
	}
}

// Register schedules the scan task.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, func() { s.scanTask(s.Ctx) }); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info("scheduler stopped")
}

// RunScanNow executes the scan task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow(ctx context.Context) {
	s.scanTask(ctx)
}

func (s *Scheduler) scanTask(ctx context.Context) {
	log.Info("running scheduled scan")
	report := s.Scanner.ScanAll(ctx, s.Symbols)
	log.Infof("scan report:\n%s", notifier.ScanTable(report))
	if err := report.Err(); err != nil {
		log.Warnf("scan finished with errors: %v", err)
	}

	results := make(map[string][]model.Match, len(report.Results))
	for _, res := range report.Results {
		results[res.Symbol] = res.Matches
	}
	active := alert.FilterActive(results, time.Now())
	for _, msg := range alert.Messages(active) {
		if err := s.Notifier.SendWithRetry(ctx, msg, 3); err != nil {
			log.Errorf("send alert: %v", err)
		}
	}
	s.sendCharts(ctx, active)
}

// sendCharts uploads one chart per alerted symbol, strongest match first,
// capped at maxChartsPerScan.
func (s *Scheduler) sendCharts(ctx context.Context, active map[string][]model.Match) {
	type entry struct {
		symbol string
		best   float64
	}
	var entries []entry
	for symbol, matches := range active {
		best := 0.0
		for _, m := range matches {
			if m.Confidence > best {
				best = m.Confidence
			}
		}
		entries = append(entries, entry{symbol, best})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].best != entries[j].best {
			return entries[i].best > entries[j].best
		}
		return entries[i].symbol < entries[j].symbol
	})
	if len(entries) > maxChartsPerScan {
		entries = entries[:maxChartsPerScan]
	}

	for _, e := range entries {
		series, err := s.Scanner.Collector.GetSeries(ctx, e.symbol)
		if err != nil {
			log.Errorf("chart fetch %s: %v", e.symbol, err)
			continue
		}
		png, err := render.Render(series, active[e.symbol])
		if err != nil {
			log.Errorf("render %s: %v", e.symbol, err)
			continue
		}
		caption := notifier.FormatMatchDetail(e.symbol, active[e.symbol])
		if err := s.Notifier.SendPhoto(ctx, caption, png); err != nil {
			log.Errorf("send chart %s: %v", e.symbol, err)
		}
	}
}

func (s *Scheduler) chartCommand(ctx context.Context, symbol string) string {
	res := s.Scanner.ScanSymbol(ctx, symbol)
	if res.Err != nil {
		return fmt.Sprintf("⚠️ %s: %v", symbol, res.Err)
	}
	series, err := s.Scanner.Collector.GetSeries(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("⚠️ %s: %v", symbol, err)
	}
	png, err := render.Render(series, res.Matches)
	if err != nil {
		return fmt.Sprintf("⚠️ render %s: %v", symbol, err)
	}
	caption := notifier.FormatMatchDetail(symbol, res.Matches)
	if err := s.Notifier.SendPhoto(ctx, caption, png); err != nil {
		log.Errorf("send chart %s: %v", symbol, err)
		return fmt.Sprintf("⚠️ send chart failed: %v", err)
	}
	return ""
}

const helpText = "Available commands:\n" +
	"/scan - scan all watched symbols now\n" +
	"/patterns - list registered detectors\n" +
	"/chart SYMBOL - render a chart with detections\n" +
	"/help - this message"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/scan":
		report := s.Scanner.ScanAll(ctx, s.Symbols)
		return notifier.FormatScanReport(report)
	case "/patterns":
		return notifier.FormatPatternList()
	case "/chart":
		if len(fields) < 2 {
			return "usage: /chart SYMBOL"
		}
		return s.chartCommand(ctx, strings.ToUpper(fields[1]))
	default:
		return helpText
	}
}
