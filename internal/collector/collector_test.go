package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/model"
)

// memCache is an in-memory barcache.Cache for exercising the collector.
type memCache struct {
	series  map[string]*model.Series
	stores  int
	loadErr error
}

func newMemCache() *memCache {
	return &memCache{series: make(map[string]*model.Series)}
}

func (m *memCache) key(symbol string, interval model.Interval) string {
	return symbol + "|" + string(interval)
}

func (m *memCache) Load(symbol string, interval model.Interval) (*model.Series, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.series[m.key(symbol, interval)], nil
}

func (m *memCache) Store(s *model.Series) error {
	m.stores++
	m.series[m.key(s.Symbol, s.Interval)] = s
	return nil
}

func (m *memCache) Close() error { return nil }

// badFetcher returns a series that fails validation.
type badFetcher struct{}

func (badFetcher) Name() string { return "bad" }

func (badFetcher) FetchSeries(_ context.Context, symbol string, _ model.Period, interval model.Interval) (*model.Series, error) {
	return &model.Series{
		Symbol:   symbol,
		Interval: interval,
		Bars: []model.Bar{
			{Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 9, Low: 11, Close: 10, Volume: 100},
		},
		FetchedAt: time.Now(),
	}, nil
}

func TestGetSeriesFreshCacheHit(t *testing.T) {
	cache := newMemCache()
	cached := &model.Series{
		Symbol:   "AAPL",
		Interval: model.IntervalDaily,
		Bars: []model.Bar{
			{Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		},
		FetchedAt: time.Now(),
	}
	require.NoError(t, cache.Store(cached))

	// a fetch attempt would fail, so success proves the cache answered
	fetcher := &MockFetcher{Errs: map[string]error{"AAPL": errors.New("must not fetch")}}
	c := NewCollector(fetcher, cache, model.Period1Year, model.IntervalDaily, time.Hour)

	got, err := c.GetSeries(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestGetSeriesStaleCacheRefetches(t *testing.T) {
	cache := newMemCache()
	stale := &model.Series{
		Symbol:   "AAPL",
		Interval: model.IntervalDaily,
		Bars: []model.Bar{
			{Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		},
		FetchedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, cache.Store(stale))
	storesBefore := cache.stores

	c := NewCollector(&MockFetcher{Bars: 30}, cache, model.Period1Year, model.IntervalDaily, time.Hour)

	got, err := c.GetSeries(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Len())
	assert.Equal(t, storesBefore+1, cache.stores)
}

func TestGetSeriesCacheLoadErrorFallsThrough(t *testing.T) {
	cache := newMemCache()
	cache.loadErr = errors.New("disk on fire")

	c := NewCollector(&MockFetcher{Bars: 20}, cache, model.Period1Year, model.IntervalDaily, time.Hour)

	got, err := c.GetSeries(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Len())
}

func TestGetSeriesFetchErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	c := NewCollector(&MockFetcher{Errs: map[string]error{"AAPL": boom}},
		newMemCache(), model.Period1Year, model.IntervalDaily, time.Hour)

	_, err := c.GetSeries(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch AAPL via mock")
}

func TestGetSeriesRejectsInvalidSeries(t *testing.T) {
	cache := newMemCache()
	c := NewCollector(badFetcher{}, cache, model.Period1Year, model.IntervalDaily, time.Hour)

	_, err := c.GetSeries(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid series for AAPL")
	assert.Zero(t, cache.stores)
}

func TestMockFetcherDeterministic(t *testing.T) {
	m := &MockFetcher{Bars: 50}

	first, err := m.FetchSeries(context.Background(), "AAPL", model.Period1Year, model.IntervalDaily)
	require.NoError(t, err)
	second, err := m.FetchSeries(context.Background(), "AAPL", model.Period1Year, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, first.Bars, second.Bars)

	other, err := m.FetchSeries(context.Background(), "MSFT", model.Period1Year, model.IntervalDaily)
	require.NoError(t, err)
	assert.NotEqual(t, first.Bars[0].Close, other.Bars[0].Close)

	require.NoError(t, first.Validate())
}

func TestMockFetcherDefaultLength(t *testing.T) {
	m := &MockFetcher{}
	s, err := m.FetchSeries(context.Background(), "AAPL", model.Period1Year, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, 250, s.Len())
}

func TestBarLimit(t *testing.T) {
	tests := []struct {
		period   model.Period
		interval model.Interval
		want     int
	}{
		{model.Period1Year, model.IntervalDaily, 365},
		{model.Period3Months, model.IntervalDaily, 91},
		{model.Period6Months, model.IntervalWeekly, 27},
		{model.Period1Year, model.IntervalWeekly, 53},
		{model.Period2Years, model.IntervalMonthly, 25},
		{model.Period5Years, model.IntervalMonthly, 61},
		{model.Period("8y"), model.IntervalDaily, 365},
	}
	for _, tt := range tests {
		got := barLimit(tt.period, tt.interval)
		assert.Equalf(t, tt.want, got, "barLimit(%s, %s)", tt.period, tt.interval)
	}
}

func dailyBar(t time.Time, o, h, l, c, v float64) model.Bar {
	return model.Bar{Time: t, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestAggregateDailyWeekly(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	// Jan 6-8 2025 are ISO week 2, Jan 13 opens week 3
	daily := []model.Bar{
		dailyBar(day(6), 10, 12, 9, 11, 100),
		dailyBar(day(7), 11, 15, 10, 12, 200),
		dailyBar(day(8), 12, 13, 8, 9, 300),
		dailyBar(day(13), 9, 10, 7, 8, 400),
	}

	weeks := aggregateDaily(daily, model.IntervalWeekly)
	require.Len(t, weeks, 2)

	assert.Equal(t, day(6), weeks[0].Time)
	assert.Equal(t, 10.0, weeks[0].Open)
	assert.Equal(t, 15.0, weeks[0].High)
	assert.Equal(t, 8.0, weeks[0].Low)
	assert.Equal(t, 9.0, weeks[0].Close)
	assert.Equal(t, 600.0, weeks[0].Volume)

	assert.Equal(t, day(13), weeks[1].Time)
	assert.Equal(t, 400.0, weeks[1].Volume)
}

func TestAggregateDailyMonthly(t *testing.T) {
	daily := []model.Bar{
		dailyBar(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), 20, 22, 19, 21, 100),
		dailyBar(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 21, 25, 20, 24, 150),
		dailyBar(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), 24, 26, 23, 25, 200),
	}

	months := aggregateDaily(daily, model.IntervalMonthly)
	require.Len(t, months, 2)

	jan := months[0]
	assert.Equal(t, 20.0, jan.Open)
	assert.Equal(t, 25.0, jan.High)
	assert.Equal(t, 19.0, jan.Low)
	assert.Equal(t, 24.0, jan.Close)
	assert.Equal(t, 250.0, jan.Volume)

	feb := months[1]
	assert.Equal(t, 25.0, feb.Close)
	assert.Equal(t, 200.0, feb.Volume)
}

func TestAggregateDailyEmpty(t *testing.T) {
	assert.Nil(t, aggregateDaily(nil, model.IntervalWeekly))
}
