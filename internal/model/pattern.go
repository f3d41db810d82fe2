package model

import "time"

// AnnotationKind discriminates the drawable annotation variants.
type AnnotationKind string

const (
	AnnotationLine   AnnotationKind = "line"
	AnnotationRegion AnnotationKind = "region"
	AnnotationMarker AnnotationKind = "marker"
)

// Style carries the drawing hints for an annotation. Colors are CSS
// rgba literals, e.g. "rgba(255, 82, 82, 0.8)". Dash is "", "dash"
// or "dot". Symbol and Size apply to markers, Fill to regions.
type Style struct {
	Color  string
	Width  float64
	Dash   string
	Fill   string
	Symbol string
	Size   int
}

// Annotation is one drawable element of a pattern: a two-point line,
// a shaded region between two opposite corners, or a point marker.
type Annotation struct {
	Kind AnnotationKind

	// Line endpoints, or region corners.
	X0, X1 time.Time
	Y0, Y1 float64

	// Marker position.
	X time.Time
	Y float64

	Style Style
}

// NewLine builds a line annotation between two points.
func NewLine(x0 time.Time, y0 float64, x1 time.Time, y1 float64, st Style) Annotation {
	return Annotation{Kind: AnnotationLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Style: st}
}

// NewRegion builds a shaded region spanning [x0,x1] x [y0,y1].
func NewRegion(x0, x1 time.Time, y0, y1 float64, st Style) Annotation {
	return Annotation{Kind: AnnotationRegion, X0: x0, Y0: y0, X1: x1, Y1: y1, Style: st}
}

// NewMarker builds a point marker annotation.
func NewMarker(x time.Time, y float64, st Style) Annotation {
	return Annotation{Kind: AnnotationMarker, X: x, Y: y, Style: st}
}

// Match is one detected chart pattern occurrence.
type Match struct {
	Pattern     string
	Start       time.Time
	End         time.Time
	Confidence  float64
	Description string
	Annotations []Annotation
}

// activeWindowDays is how many calendar days after its end date a
// pattern still counts as actionable.
const activeWindowDays = 3

// IsActiveOn reports whether the match is still considered active at
// the given time: its end date, truncated to a civil date, falls on
// or after now's date minus three calendar days.
func (m *Match) IsActiveOn(now time.Time) bool {
	today := civilDate(now)
	end := civilDate(m.End)
	cutoff := today.AddDate(0, 0, -activeWindowDays)
	return !end.Before(cutoff)
}

// IsActiveToday is the wall-clock convenience wrapper around IsActiveOn.
func (m *Match) IsActiveToday() bool {
	return m.IsActiveOn(time.Now())
}

func civilDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
