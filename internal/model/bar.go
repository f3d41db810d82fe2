package model

import (
	"fmt"
	"time"
)

// Bar represents a single OHLCV candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Interval is the bar cadence, using Yahoo chart API tokens.
type Interval string

const (
	IntervalDaily   Interval = "1d"
	IntervalWeekly  Interval = "1wk"
	IntervalMonthly Interval = "1mo"
)

// Valid reports whether the interval is one of the supported cadences.
func (i Interval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}

// Period is the lookback window requested from the data source.
type Period string

const (
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period2Years  Period = "2y"
	Period5Years  Period = "5y"
)

// Valid reports whether the period is one of the supported lookbacks.
func (p Period) Valid() bool {
	switch p {
	case Period3Months, Period6Months, Period1Year, Period2Years, Period5Years:
		return true
	}
	return false
}

// Series holds a date-indexed run of bars for one symbol.
type Series struct {
	Symbol    string
	Interval  Interval
	Bars      []Bar
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Highs returns the high of every bar in order.
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low of every bar in order.
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Closes returns the close of every bar in order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume of every bar in order.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Times returns the timestamp of every bar in order.
func (s *Series) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// BarSpacing returns the spacing between the first two bars,
// or zero when the series has fewer than two.
func (s *Series) BarSpacing() time.Duration {
	if len(s.Bars) < 2 {
		return 0
	}
	return s.Bars[1].Time.Sub(s.Bars[0].Time)
}

// Validate checks the series is well formed: non-empty, strictly
// increasing timestamps, positive closing prices and high >= low on
// every bar. Detection assumes these hold, so a feed that violates
// them is rejected here rather than deep inside a detector.
func (s *Series) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("series has no symbol")
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("series %s: no bars", s.Symbol)
	}
	for i, b := range s.Bars {
		if b.Time.IsZero() {
			return fmt.Errorf("series %s: bar %d has zero timestamp", s.Symbol, i)
		}
		if i > 0 && !s.Bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("series %s: bar %d timestamp %s not after previous %s",
				s.Symbol, i, b.Time.Format("2006-01-02"), s.Bars[i-1].Time.Format("2006-01-02"))
		}
		if b.Close <= 0 {
			return fmt.Errorf("series %s: bar %d has non-positive close %.4f", s.Symbol, i, b.Close)
		}
		if b.High < b.Low {
			return fmt.Errorf("series %s: bar %d high %.4f below low %.4f", s.Symbol, i, b.High, b.Low)
		}
	}
	return nil
}
