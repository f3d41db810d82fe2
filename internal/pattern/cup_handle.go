package pattern

import (
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

// CupAndHandle detects the bullish continuation pattern of a rounded
// U-shaped base (the cup) between two rims of similar height, optionally
// followed by a shallow pullback (the handle).
type CupAndHandle struct{}

// NewCupAndHandle returns the detector with its standard thresholds.
func NewCupAndHandle() *CupAndHandle { return &CupAndHandle{} }

func (d *CupAndHandle) Name() string { return NameCupAndHandle }

func (d *CupAndHandle) Description() string {
	return "Bullish continuation: a rounded U-shaped base followed by a small pullback handle."
}

const (
	cupMinBars    = 40
	cupOrder      = 8
	cupMinWidth   = 20
	cupMaxWidth   = 150
	cupRimTol     = 0.08 // rim levels must match within 8%
	cupMinDepth   = 0.12
	cupMaxDepth   = 0.50
	cupMaxJagged  = 0.5  // std of low diffs relative to cup depth
	cupMinCurve   = 0.02 // both halves straighter than this is a V, not a cup
	cupMinConf    = 0.3
	cupMaxConf    = 0.95
	cupArcPoints  = 20
	handleMinDrop = 0.02
)

func (d *CupAndHandle) Detect(s *model.Series) []model.Match {
	n := s.Len()
	if n < cupMinBars {
		return nil
	}
	highs := s.Highs()
	lows := s.Lows()
	dates := s.Times()

	maxIdx := LocalMaxima(highs, cupOrder)
	minIdx := LocalMinima(lows, cupOrder)
	if len(maxIdx) < 2 || len(minIdx) < 1 {
		return nil
	}

	var matches []model.Match
	for i := 0; i < len(maxIdx); i++ {
		for j := i + 1; j < len(maxIdx); j++ {
			left := maxIdx[i]
			right := maxIdx[j]
			leftRim := highs[left]
			rightRim := highs[right]

			width := right - left
			if width < cupMinWidth || width > cupMaxWidth {
				continue
			}

			rimDiff := math.Abs(leftRim-rightRim) / math.Max(leftRim, rightRim)
			if rimDiff > cupRimTol {
				continue
			}

			bottomIdx := left + argMin(lows[left:right+1])
			bottom := lows[bottomIdx]

			rimAvg := (leftRim + rightRim) / 2
			depth := (rimAvg - bottom) / rimAvg
			if depth < cupMinDepth || depth > cupMaxDepth {
				continue
			}

			center := float64(bottomIdx-left) / float64(width)
			if center < 0.25 || center > 0.75 {
				continue
			}

			// U versus V: the descent and ascent must be gradual (low
			// jaggedness) yet actually curved (a straight-sided dip is
			// a V no matter how clean its slopes are).
			leftHalf := lows[left : bottomIdx+1]
			rightHalf := lows[bottomIdx : right+1]
			if len(leftHalf) > 3 && len(rightHalf) > 3 {
				priceRange := rimAvg - bottom
				if priceRange > 0 {
					jagged := (popStd(diff(leftHalf)) + popStd(diff(rightHalf))) / 2
					if jagged/priceRange > cupMaxJagged {
						continue
					}
					if halfCurvature(leftHalf, left)/priceRange < cupMinCurve &&
						halfCurvature(rightHalf, bottomIdx)/priceRange < cupMinCurve {
						continue
					}
				}
			}

			// Handle: a shallow pullback shortly after the right rim.
			handleSearchEnd := minInt(right+width/3, n-1)
			handleEnd := right
			handleLow := 0.0
			hasHandle := false
			if handleSearchEnd > right+3 {
				handleLowIdx := right + argMin(lows[right:handleSearchEnd+1])
				handleLow = lows[handleLowIdx]
				handleDepth := (rightRim - handleLow) / rightRim
				hasHandle = handleDepth > handleMinDrop && handleDepth < depth*0.5
				if hasHandle {
					handleEnd = handleSearchEnd
				}
			}

			confidence := 0.4
			confidence += 0.15 * (1 - rimDiff/cupRimTol)
			confidence += 0.1 * (1 - math.Abs(center-0.5)/0.25)
			if hasHandle {
				confidence += 0.15
			}
			if depth > 0.15 {
				confidence += 0.1
			}
			confidence = clamp(confidence, cupMinConf, cupMaxConf)

			var annotations []model.Annotation

			// Cup arc approximated by line segments over the lows.
			arcIdx := linspaceInt(left, right, minInt(cupArcPoints, width))
			for k := 0; k+1 < len(arcIdx); k++ {
				i0, i1 := arcIdx[k], arcIdx[k+1]
				annotations = append(annotations, model.NewLine(
					dates[i0], lows[i0], dates[i1], lows[i1],
					model.Style{Color: "rgba(33, 150, 243, 0.6)", Width: 2}))
			}

			annotations = append(annotations,
				model.NewLine(dates[left], rimAvg, dates[handleEnd], rimAvg,
					model.Style{Color: "rgba(76, 175, 80, 0.7)", Width: 2, Dash: "dash"}),
				model.NewRegion(dates[left], dates[right], bottom, rimAvg,
					model.Style{Fill: "rgba(33, 150, 243, 0.06)"}),
			)
			if hasHandle {
				annotations = append(annotations,
					model.NewRegion(dates[right], dates[handleEnd], handleLow, rightRim,
						model.Style{Fill: "rgba(255, 152, 0, 0.1)"}))
			}

			desc := fmt.Sprintf("Cup and Handle (%d bars, depth %.1f%%)", width, depth*100)
			if hasHandle {
				handleDepth := (rightRim - handleLow) / rightRim
				desc += fmt.Sprintf(" with handle (%.1f%%)", handleDepth*100)
			}

			matches = append(matches, model.Match{
				Pattern:     d.Name(),
				Start:       dates[left],
				End:         dates[handleEnd],
				Confidence:  round2(confidence),
				Description: desc,
				Annotations: annotations,
			})
		}
	}
	return Deduplicate(matches)
}

// halfCurvature measures how far one cup half departs from a straight
// line: the RMS residual of its least-squares fit. offset is the bar
// index of the first sample so residuals are computed in series space.
func halfCurvature(half []float64, offset int) float64 {
	xs := make([]float64, len(half))
	for i := range half {
		xs[i] = float64(offset + i)
	}
	line, ok := FitLine(xs, half)
	if !ok {
		return 0
	}
	return rmsResidual(line, xs, half)
}

// argMin returns the index of the first minimal value.
func argMin(vals []float64) int {
	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[best] {
			best = i
		}
	}
	return best
}

// linspaceInt returns count evenly spaced integer positions from a to b
// inclusive, truncating fractional positions.
func linspaceInt(a, b, count int) []int {
	if count < 2 {
		return []int{a}
	}
	out := make([]int, count)
	step := float64(b-a) / float64(count-1)
	for i := 0; i < count; i++ {
		out[i] = a + int(float64(i)*step)
	}
	out[count-1] = b
	return out
}
