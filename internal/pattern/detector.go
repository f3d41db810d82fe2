package pattern

import (
	"sort"

	"PatternSentinel/internal/model"
)

// Detector finds one pattern family in a series. Detect never returns an
// error: a series below the detector's minimum length, an empty candidate
// set or degenerate candidate geometry all simply produce no matches.
// Detectors are stateless and safe for concurrent use.
type Detector interface {
	Name() string
	Description() string
	Detect(s *model.Series) []model.Match
}

// Registered detector names.
const (
	NameAscendingTriangle       = "Ascending Triangle"
	NameCupAndHandle            = "Cup and Handle"
	NameFallingWedge            = "Falling Wedge"
	NameInverseHeadAndShoulders = "Inverse Head and Shoulders"
	NamePennant                 = "Pennant"
	NameVCP                     = "VCP"
)

// registry is the closed set of known detectors. Adding a detector means
// adding a constructor here.
var registry = map[string]func() Detector{
	NameAscendingTriangle:       func() Detector { return NewAscendingTriangle() },
	NameCupAndHandle:            func() Detector { return NewCupAndHandle() },
	NameFallingWedge:            func() Detector { return NewFallingWedge() },
	NameInverseHeadAndShoulders: func() Detector { return NewInverseHeadAndShoulders() },
	NamePennant:                 func() Detector { return NewPennant() },
	NameVCP:                     func() Detector { return NewVCP() },
}

// Get returns a fresh detector for the given name, or nil when the name
// is unknown. Lookup never errors; callers decide whether an unknown
// name is worth reporting.
func Get(name string) Detector {
	ctor, ok := registry[name]
	if !ok {
		return nil
	}
	return ctor()
}

// Names returns all registered detector names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns one fresh instance of every registered detector, in
// Names order.
func All() []Detector {
	names := Names()
	out := make([]Detector, len(names))
	for i, name := range names {
		out[i] = registry[name]()
	}
	return out
}
