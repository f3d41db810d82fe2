package barcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/model"
)

func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "bars.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func testSeries(symbol string, interval model.Interval, n int) *model.Series {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1.5,
			Low:    price - 1.25,
			Close:  price + 0.5,
			Volume: float64(1000 * (i + 1)),
		}
	}
	return &model.Series{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: start.AddDate(0, 0, n),
	}
}

func TestStoreLoadRoundtrip(t *testing.T) {
	c := newTestCache(t)
	in := testSeries("AAPL", model.IntervalDaily, 5)
	require.NoError(t, c.Store(in))

	out, err := c.Load("AAPL", model.IntervalDaily)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "AAPL", out.Symbol)
	assert.Equal(t, model.IntervalDaily, out.Interval)
	assert.Equal(t, in.FetchedAt.Unix(), out.FetchedAt.Unix())
	require.Len(t, out.Bars, 5)
	for i, b := range out.Bars {
		assert.Equal(t, in.Bars[i].Time.Unix(), b.Time.Unix())
		assert.Equal(t, in.Bars[i].Open, b.Open)
		assert.Equal(t, in.Bars[i].High, b.High)
		assert.Equal(t, in.Bars[i].Low, b.Low)
		assert.Equal(t, in.Bars[i].Close, b.Close)
		assert.Equal(t, in.Bars[i].Volume, b.Volume)
	}
}

func TestLoadMiss(t *testing.T) {
	c := newTestCache(t)
	out, err := c.Load("NOPE", model.IntervalDaily)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestLoadMissOnOtherInterval(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Store(testSeries("AAPL", model.IntervalDaily, 3)))

	out, err := c.Load("AAPL", model.IntervalWeekly)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStoreReplacesBars(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Store(testSeries("AAPL", model.IntervalDaily, 3)))

	update := testSeries("AAPL", model.IntervalDaily, 2)
	update.FetchedAt = update.FetchedAt.Add(24 * time.Hour)
	require.NoError(t, c.Store(update))

	out, err := c.Load("AAPL", model.IntervalDaily)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Len(t, out.Bars, 2)
	assert.Equal(t, update.FetchedAt.Unix(), out.FetchedAt.Unix())
}

func TestIntervalsKeptApart(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Store(testSeries("AAPL", model.IntervalDaily, 4)))
	require.NoError(t, c.Store(testSeries("AAPL", model.IntervalWeekly, 2)))

	daily, err := c.Load("AAPL", model.IntervalDaily)
	require.NoError(t, err)
	require.NotNil(t, daily)
	assert.Len(t, daily.Bars, 4)

	weekly, err := c.Load("AAPL", model.IntervalWeekly)
	require.NoError(t, err)
	require.NotNil(t, weekly)
	assert.Len(t, weekly.Bars, 2)
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	require.NoError(t, c.Store(testSeries("AAPL", model.IntervalDaily, 3)))

	out, err := c.Load("AAPL", model.IntervalDaily)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.NoError(t, c.Close())
}
