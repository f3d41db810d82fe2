// Package render turns a series plus its detected patterns into a PNG chart.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"PatternSentinel/internal/model"
)

const (
	chartWidth  = 1280
	chartHeight = 720
)

var (
	closeColor = drawing.Color{R: 38, G: 50, B: 56, A: 255}
	bandColor  = drawing.Color{R: 120, G: 144, B: 156, A: 36}
	whiteColor = drawing.Color{R: 255, G: 255, B: 255, A: 255}
	grayColor  = drawing.Color{R: 128, G: 128, B: 128, A: 255}
)

var namedColors = map[string]drawing.Color{
	"red":    {R: 244, G: 67, B: 54, A: 255},
	"blue":   {R: 33, G: 150, B: 243, A: 255},
	"green":  {R: 76, G: 175, B: 80, A: 255},
	"orange": {R: 255, G: 152, B: 0, A: 255},
	"purple": {R: 156, G: 39, B: 176, A: 255},
	"gray":   grayColor,
}

// parseColor understands the CSS rgba(r, g, b, a) literals carried by
// annotation styles, plus a handful of names. Anything else renders gray.
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	if strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")") {
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "rgba("), ")")
		parts := strings.Split(inner, ",")
		if len(parts) == 4 {
			r, errR := strconv.Atoi(strings.TrimSpace(parts[0]))
			g, errG := strconv.Atoi(strings.TrimSpace(parts[1]))
			b, errB := strconv.Atoi(strings.TrimSpace(parts[2]))
			a, errA := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if errR == nil && errG == nil && errB == nil && errA == nil &&
				r >= 0 && r <= 255 && g >= 0 && g <= 255 && b >= 0 && b <= 255 &&
				a >= 0 && a <= 1 {
				return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a*255 + 0.5)}
			}
		}
	}
	return grayColor
}

func dashArray(dash string) []float64 {
	switch dash {
	case "dash":
		return []float64{6, 4}
	case "dot":
		return []float64{2, 3}
	default:
		return nil
	}
}

func strokeWidth(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// Render draws the close series, a light high/low band and every match's
// annotations into a PNG. An empty series cannot be charted.
func Render(s *model.Series, matches []model.Match) ([]byte, error) {
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("render: empty series")
	}

	times := s.Times()
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%s)", s.Symbol, s.Interval),
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
	}

	// The high/low band goes in first: the high boundary fills down to the
	// axis, then the low boundary erases everything beneath itself, leaving
	// a shaded band. Overlays and the close line paint on top of it.
	graph.Series = append(graph.Series,
		chart.TimeSeries{
			XValues: times,
			YValues: s.Highs(),
			Style:   chart.Style{StrokeColor: bandColor, StrokeWidth: 1, FillColor: bandColor},
		},
		chart.TimeSeries{
			XValues: times,
			YValues: s.Lows(),
			Style:   chart.Style{StrokeColor: bandColor, StrokeWidth: 1, FillColor: whiteColor},
		},
	)

	for _, m := range matches {
		for _, a := range m.Annotations {
			graph.Series = append(graph.Series, annotationSeries(a)...)
		}
	}

	graph.Series = append(graph.Series, chart.TimeSeries{
		XValues: times,
		YValues: s.Closes(),
		Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: 1.5},
	})

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", s.Symbol, err)
	}
	return buf.Bytes(), nil
}

// annotationSeries maps one annotation onto go-chart series. Regions become
// a translucent fill under the top boundary plus faint boundary strokes,
// the closest go-chart gets to a band between two levels.
func annotationSeries(a model.Annotation) []chart.Series {
	switch a.Kind {
	case model.AnnotationLine:
		c := parseColor(a.Style.Color)
		return []chart.Series{chart.TimeSeries{
			XValues: []time.Time{a.X0, a.X1},
			YValues: []float64{a.Y0, a.Y1},
			Style: chart.Style{
				StrokeColor:     c,
				StrokeWidth:     strokeWidth(a.Style.Width),
				StrokeDashArray: dashArray(a.Style.Dash),
			},
		}}
	case model.AnnotationRegion:
		fill := parseColor(a.Style.Fill)
		edge := fill.WithAlpha(110)
		return []chart.Series{
			chart.TimeSeries{
				XValues: []time.Time{a.X0, a.X1},
				YValues: []float64{a.Y1, a.Y1},
				Style:   chart.Style{StrokeColor: edge, StrokeWidth: 1, FillColor: fill},
			},
			chart.TimeSeries{
				XValues: []time.Time{a.X0, a.X1},
				YValues: []float64{a.Y0, a.Y0},
				Style:   chart.Style{StrokeColor: edge, StrokeWidth: 1},
			},
		}
	case model.AnnotationMarker:
		c := parseColor(a.Style.Color)
		label := "▲"
		if a.Style.Symbol != "triangle-up" {
			label = "•"
		}
		size := float64(a.Style.Size)
		if size <= 0 {
			size = 10
		}
		return []chart.Series{chart.AnnotationSeries{
			Annotations: []chart.Value2{{
				XValue: chart.TimeToFloat64(a.X),
				YValue: a.Y,
				Label:  label,
			}},
			Style: chart.Style{
				StrokeColor: c,
				FillColor:   c.WithAlpha(60),
				FontColor:   c,
				FontSize:    size,
			},
		}}
	}
	return nil
}
