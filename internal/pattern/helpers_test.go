package pattern

import (
	"time"

	"PatternSentinel/internal/model"
)

var testStart = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func dailyTimes(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = testStart.AddDate(0, 0, i)
	}
	return out
}

func monthlyTimes(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = testStart.AddDate(0, i, 0)
	}
	return out
}

// newSeries assembles a series from parallel value slices. closes and
// volumes may be nil: closes default to the high/low midpoint and
// volumes to one million.
func newSeries(symbol string, interval model.Interval, times []time.Time, highs, lows, closes, volumes []float64) *model.Series {
	bars := make([]model.Bar, len(times))
	for i := range bars {
		c := (highs[i] + lows[i]) / 2
		if closes != nil {
			c = closes[i]
		}
		v := 1000000.0
		if volumes != nil {
			v = volumes[i]
		}
		bars[i] = model.Bar{Time: times[i], Open: c, High: highs[i], Low: lows[i], Close: c, Volume: v}
	}
	return &model.Series{Symbol: symbol, Interval: interval, Bars: bars, FetchedAt: testStart}
}

func flatSeries(n int, price float64) *model.Series {
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range highs {
		highs[i] = price + 0.5
		lows[i] = price - 0.5
	}
	return newSeries("FLAT", model.IntervalDaily, dailyTimes(n), highs, lows, nil, nil)
}
