package barcache

import "PatternSentinel/internal/model"

// Cache persists fetched series between scans. Load returns nil, nil when no
// series is cached for the symbol at the given cadence; staleness is judged
// by the caller via the series' FetchedAt.
type Cache interface {
	Load(symbol string, interval model.Interval) (*model.Series, error)
	Store(s *model.Series) error
	Close() error
}
