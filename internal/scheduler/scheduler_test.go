package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/barcache"
	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/scanner"
)

// captureNotifier records everything sent through it.
type captureNotifier struct {
	texts    []string
	captions []string
	photos   int
}

func (c *captureNotifier) Send(_ context.Context, text string) error {
	c.texts = append(c.texts, text)
	return nil
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.texts = append(c.texts, text)
	return nil
}

func (c *captureNotifier) SendPhoto(_ context.Context, caption string, png []byte) error {
	c.captions = append(c.captions, caption)
	if len(png) > 0 {
		c.photos++
	}
	return nil
}

func newTestScheduler(symbols []string) (*Scheduler, *captureNotifier) {
	col := collector.NewCollector(&collector.MockFetcher{Bars: 120}, barcache.NewNoopCache(),
		model.Period1Year, model.IntervalDaily, time.Hour)
	sc := scanner.New(col, nil)
	n := &captureNotifier{}
	return NewScheduler(context.Background(), sc, n, symbols), n
}

func TestRegisterRejectsBadCron(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"})
	assert.Error(t, s.Register("not a cron"))
	assert.NoError(t, s.Register("0 0 7 * * 1-5"))
}

func TestHandleCommandPatterns(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"})
	out := s.HandleCommand(context.Background(), "/patterns")

	assert.Contains(t, out, "Ascending Triangle")
	assert.Contains(t, out, "VCP")
	assert.Contains(t, out, "Inverse Head and Shoulders")
}

func TestHandleCommandScan(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAA", "BBB"})
	out := s.HandleCommand(context.Background(), "/scan")

	assert.Contains(t, out, "Scanned 2 symbols")
	assert.Contains(t, out, "<pre>")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
}

func TestHandleCommandChart(t *testing.T) {
	s, n := newTestScheduler([]string{"AAPL"})

	out := s.HandleCommand(context.Background(), "/chart")
	assert.Equal(t, "usage: /chart SYMBOL", out)

	out = s.HandleCommand(context.Background(), "/chart aapl")
	assert.Empty(t, out)
	require.Equal(t, 1, n.photos)
	assert.Contains(t, n.captions[0], "AAPL")
}

func TestHandleCommandChartFetchError(t *testing.T) {
	col := collector.NewCollector(
		&collector.MockFetcher{Errs: map[string]error{"BAD": context.DeadlineExceeded}},
		barcache.NewNoopCache(), model.Period1Year, model.IntervalDaily, time.Hour)
	s := NewScheduler(context.Background(), scanner.New(col, nil), &captureNotifier{}, []string{"BAD"})

	out := s.HandleCommand(context.Background(), "/chart bad")
	assert.True(t, strings.HasPrefix(out, "⚠️"))
	assert.Contains(t, out, "BAD")
}

func TestHandleCommandHelpAndUnknown(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"})

	help := s.HandleCommand(context.Background(), "/help")
	assert.Contains(t, help, "/scan")
	assert.Contains(t, help, "/chart SYMBOL")

	assert.Equal(t, help, s.HandleCommand(context.Background(), "/bogus"))
	assert.Equal(t, help, s.HandleCommand(context.Background(), "   "))
}

func TestRunScanNowDeliversActiveAlerts(t *testing.T) {
	// hand-built scanner state is awkward here, so drive the real pipeline
	// and only assert the invariant: every sent alert is an HTML alert line
	s, n := newTestScheduler([]string{"AAA", "BBB", "CCC"})
	s.RunScanNow(context.Background())

	for _, msg := range n.texts {
		assert.Contains(t, msg, "🚨")
		assert.Contains(t, msg, "Confidence")
	}
	assert.LessOrEqual(t, n.photos, maxChartsPerScan)
	assert.Equal(t, len(n.captions), n.photos)
}
