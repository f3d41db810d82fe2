package pattern

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Line is a fitted trendline in bar-index space: y = Intercept + Slope*x.
type Line struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// FitLine fits an ordinary least-squares line through the given points.
// Returns false when fewer than two points are given or the fit is
// degenerate (all xs equal), in which case the candidate using it should
// be skipped.
func FitLine(xs, ys []float64) (Line, bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return Line{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return Line{}, false
	}
	return Line{Slope: beta, Intercept: alpha}, true
}

// fitIndexed fits a line through (idx[i], vals[idx[i]]) for the given
// extremum indices.
func fitIndexed(idx []int, vals []float64) (Line, bool) {
	xs := make([]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = float64(j)
		ys[i] = vals[j]
	}
	return FitLine(xs, ys)
}

// IntersectX returns the x coordinate where the two lines cross, the
// apex of a converging trendline pair. Parallel lines have no apex.
func (l Line) IntersectX(other Line) (float64, bool) {
	if math.Abs(l.Slope-other.Slope) < 1e-9 {
		return 0, false
	}
	return (other.Intercept - l.Intercept) / (l.Slope - other.Slope), true
}

// rmsResidual is the root-mean-square vertical distance of the points
// from the line.
func rmsResidual(l Line, xs, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for i := range xs {
		d := ys[i] - l.At(xs[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// mean of vals; zero for an empty slice.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// popStd is the population standard deviation. Detector thresholds
// assume the ddof=0 form, not the sample form.
func popStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.PopStdDev(vals, nil)
}

// diff returns vals[i+1]-vals[i] for every adjacent pair.
func diff(vals []float64) []float64 {
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		out[i-1] = vals[i] - vals[i-1]
	}
	return out
}

// round2 rounds a confidence to two decimals, the precision reported
// to users.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clamp bounds v into [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
