package collector

import (
	"context"

	"PatternSentinel/internal/model"
)

// Fetcher defines the interface for fetching OHLCV series from a data source.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*model.Series, error)
	Name() string
}
