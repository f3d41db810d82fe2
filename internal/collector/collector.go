package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"PatternSentinel/internal/barcache"
	"PatternSentinel/internal/model"
)

// MockFetcher produces a deterministic synthetic random walk per symbol,
// for tests and dry runs. Errs forces a failure for the listed symbols.
type MockFetcher struct {
	Bars int
	Errs map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string, _ model.Period, interval model.Interval) (*model.Series, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	count := m.Bars
	if count <= 0 {
		count = 250
	}
	var seed int64
	for _, r := range symbol {
		seed = seed*31 + int64(r)
	}
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 40 + rng.Float64()*120
	bars := make([]model.Bar, count)
	for i := range bars {
		open := price
		price += (rng.Float64() - 0.5) * 2
		if price < 5 {
			price = 5
		}
		high := price + rng.Float64()
		if open > price {
			high = open + rng.Float64()
		}
		low := price - rng.Float64()
		if open < price {
			low = open - rng.Float64()
		}
		if low < 1 {
			low = 1
		}
		bars[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: float64(500000 + rng.Intn(1500000)),
		}
	}
	return &model.Series{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: start.AddDate(0, 0, count),
	}, nil
}

// Collector binds a fetcher to a cache. The fetch configuration is fixed at
// construction so every caller sees the same series for a symbol.
type Collector struct {
	Fetcher  Fetcher
	Cache    barcache.Cache
	Period   model.Period
	Interval model.Interval
	TTL      time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, cache barcache.Cache, period model.Period, interval model.Interval, ttl time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Cache: cache, Period: period, Interval: interval, TTL: ttl}
}

// GetSeries returns bars for the symbol, consulting the cache first. A cached
// series older than the TTL is refetched. Fetched series are validated before
// they are stored or returned, so malformed upstream data surfaces here.
func (c *Collector) GetSeries(ctx context.Context, symbol string) (*model.Series, error) {
	if cached, err := c.Cache.Load(symbol, c.Interval); err != nil {
		log.Warnf("cache load for %s failed: %v", symbol, err)
	} else if cached != nil && time.Since(cached.FetchedAt) < c.TTL {
		log.Debugf("cache hit for %s (%d bars)", symbol, cached.Len())
		return cached, nil
	}

	series, err := c.Fetcher.FetchSeries(ctx, symbol, c.Period, c.Interval)
	if err != nil {
		return nil, fmt.Errorf("fetch %s via %s: %w", symbol, c.Fetcher.Name(), err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", symbol, err)
	}
	if err := c.Cache.Store(series); err != nil {
		log.Warnf("cache store for %s failed: %v", symbol, err)
	}
	return series, nil
}
