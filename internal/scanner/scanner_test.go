package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/barcache"
	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/model"
)

func newTestScanner(fetcher collector.Fetcher, enabled []string) *Scanner {
	col := collector.NewCollector(fetcher, barcache.NewNoopCache(),
		model.Period1Year, model.IntervalDaily, time.Hour)
	return New(col, enabled)
}

func TestNewResolvesDetectors(t *testing.T) {
	all := newTestScanner(&collector.MockFetcher{}, nil)
	assert.Len(t, all.Detectors(), 6)

	some := newTestScanner(&collector.MockFetcher{}, []string{"Ascending Triangle", "VCP"})
	require.Len(t, some.Detectors(), 2)
	assert.Equal(t, "Ascending Triangle", some.Detectors()[0].Name())

	unknownSkipped := newTestScanner(&collector.MockFetcher{}, []string{"Pennant", "Double Bottom"})
	assert.Len(t, unknownSkipped.Detectors(), 1)
}

func TestScanSymbolFetchError(t *testing.T) {
	boom := errors.New("boom")
	s := newTestScanner(&collector.MockFetcher{Errs: map[string]error{"BAD": boom}}, nil)

	res := s.ScanSymbol(context.Background(), "BAD")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, boom)
	assert.Empty(t, res.Matches)
	assert.Zero(t, res.Bars)
}

func TestScanAllIsolatesFailures(t *testing.T) {
	s := newTestScanner(&collector.MockFetcher{
		Bars: 120,
		Errs: map[string]error{"BAD": errors.New("boom")},
	}, nil)

	report := s.ScanAll(context.Background(), []string{"AAA", "BAD", "CCC"})
	require.Len(t, report.Results, 3)

	// report order equals input order regardless of goroutine scheduling
	assert.Equal(t, "AAA", report.Results[0].Symbol)
	assert.Equal(t, "BAD", report.Results[1].Symbol)
	assert.Equal(t, "CCC", report.Results[2].Symbol)

	assert.NoError(t, report.Results[0].Err)
	assert.Error(t, report.Results[1].Err)
	assert.NoError(t, report.Results[2].Err)
	assert.Equal(t, 120, report.Results[0].Bars)

	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "BAD")
}

func TestScanAllNoErrors(t *testing.T) {
	s := newTestScanner(&collector.MockFetcher{Bars: 60}, nil)
	report := s.ScanAll(context.Background(), []string{"AAA", "BBB"})
	assert.NoError(t, report.Err())
}

func TestScanAllDeterministic(t *testing.T) {
	s := newTestScanner(&collector.MockFetcher{Bars: 200}, nil)
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}

	first := s.ScanAll(context.Background(), symbols)
	second := s.ScanAll(context.Background(), symbols)
	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Symbol, second.Results[i].Symbol)
		assert.Equal(t, first.Results[i].Matches, second.Results[i].Matches)
	}
	assert.Equal(t, first.TotalMatches(), second.TotalMatches())
}

func TestReportCounters(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	report := &Report{Results: []SymbolResult{
		{Symbol: "AAA", Matches: []model.Match{
			{Pattern: "VCP", Start: day(0), End: day(30), Confidence: 0.7},
			{Pattern: "Pennant", Start: day(5), End: day(10), Confidence: 0.5},
		}},
		{Symbol: "BBB", Err: errors.New("boom")},
		{Symbol: "CCC", Matches: []model.Match{
			{Pattern: "VCP", Start: day(0), End: day(28), Confidence: 0.6},
		}},
	}}

	assert.Equal(t, 3, report.TotalMatches())

	// day(30) and day(28) are within the three-day window of day(31)
	assert.Equal(t, 2, report.ActiveMatches(day(31)))
	assert.Equal(t, 1, report.ActiveMatches(day(32)))
	assert.Equal(t, 0, report.ActiveMatches(day(40)))
}
