package barcache

import "PatternSentinel/internal/model"

// NoopCache is a no-op implementation used when caching is disabled.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Load(_ string, _ model.Interval) (*model.Series, error) { return nil, nil }
func (n *NoopCache) Store(_ *model.Series) error                            { return nil }
func (n *NoopCache) Close() error                                           { return nil }
