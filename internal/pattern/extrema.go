// Package pattern implements chart-pattern detection over OHLCV series:
// shared numeric primitives (local extrema, least-squares trendlines,
// overlap deduplication) and the family of detectors built on them.
package pattern

// LocalMaxima returns the indices of local maxima in vals, in ascending
// order. Index i qualifies when vals[i] >= vals[i-j] and vals[i] >= vals[i+j]
// for every 1 <= j <= order. Comparisons are non-strict, so every index of a
// flat plateau qualifies when its window holds no strictly greater value.
// No index within order positions of either boundary is reported.
func LocalMaxima(vals []float64, order int) []int {
	return localExtrema(vals, order, func(a, b float64) bool { return a >= b })
}

// LocalMinima is the mirror of LocalMaxima using <= comparisons.
func LocalMinima(vals []float64, order int) []int {
	return localExtrema(vals, order, func(a, b float64) bool { return a <= b })
}

func localExtrema(vals []float64, order int, cmp func(a, b float64) bool) []int {
	if order <= 0 || len(vals) < 2*order+1 {
		return nil
	}
	var idx []int
	for i := order; i <= len(vals)-1-order; i++ {
		ok := true
		for j := 1; j <= order; j++ {
			if !cmp(vals[i], vals[i-j]) || !cmp(vals[i], vals[i+j]) {
				ok = false
				break
			}
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}
