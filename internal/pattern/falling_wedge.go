package pattern

import (
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

// FallingWedge detects the bullish reversal pattern where declining highs
// and declining lows converge into a downward-sloping wedge, the upper
// boundary falling faster than the lower one.
type FallingWedge struct{}

// NewFallingWedge returns the detector with its standard thresholds.
func NewFallingWedge() *FallingWedge { return &FallingWedge{} }

func (d *FallingWedge) Name() string { return NameFallingWedge }

func (d *FallingWedge) Description() string {
	return "Bullish reversal: decreasing highs and lows converging into a descending wedge."
}

const (
	wedgeMinBars        = 30
	wedgeOrder          = 5
	wedgeMinSpan        = 15
	wedgeMaxSpan        = 120
	wedgeMinConvergence = 1.2
	wedgeMaxConf        = 0.9
)

func (d *FallingWedge) Detect(s *model.Series) []model.Match {
	if s.Len() < wedgeMinBars {
		return nil
	}
	highs := s.Highs()
	lows := s.Lows()
	dates := s.Times()

	maxIdx := LocalMaxima(highs, wedgeOrder)
	minIdx := LocalMinima(lows, wedgeOrder)
	if len(maxIdx) < 3 || len(minIdx) < 3 {
		return nil
	}

	var matches []model.Match
	for i := 0; i+2 < len(maxIdx); i++ {
		for j := 0; j+2 < len(minIdx); j++ {
			maxWin := maxIdx[i : i+3]
			minWin := minIdx[j : j+3]

			start := minInt(maxWin[0], minWin[0])
			end := maxInt(maxWin[2], minWin[2])
			if end-start < wedgeMinSpan || end-start > wedgeMaxSpan {
				continue
			}

			maxVals := []float64{highs[maxWin[0]], highs[maxWin[1]], highs[maxWin[2]]}
			minVals := []float64{lows[minWin[0]], lows[minWin[1]], lows[minWin[2]]}

			// Both pivot sequences must be strictly decreasing.
			if !(maxVals[0] > maxVals[1] && maxVals[1] > maxVals[2]) {
				continue
			}
			if !(minVals[0] > minVals[1] && minVals[1] > minVals[2]) {
				continue
			}

			maxLine, okMax := fitIndexed(maxWin, highs)
			minLine, okMin := fitIndexed(minWin, lows)
			if !okMax || !okMin {
				continue
			}
			if maxLine.Slope >= 0 || minLine.Slope >= 0 {
				continue
			}
			// Upper boundary must fall faster than the lower one.
			if maxLine.Slope >= minLine.Slope {
				continue
			}

			convergence := 0.0
			if math.Abs(minLine.Slope) > 1e-9 {
				convergence = math.Abs(maxLine.Slope) / math.Abs(minLine.Slope)
			}
			if convergence < wedgeMinConvergence {
				continue
			}

			confidence := math.Min(wedgeMaxConf, 0.5+(convergence-1.0)*0.2)

			annotations := []model.Annotation{
				model.NewLine(dates[start], maxLine.At(float64(start)), dates[end], maxLine.At(float64(end)),
					model.Style{Color: "rgba(255, 82, 82, 0.8)", Width: 2, Dash: "dash"}),
				model.NewLine(dates[start], minLine.At(float64(start)), dates[end], minLine.At(float64(end)),
					model.Style{Color: "rgba(76, 175, 80, 0.8)", Width: 2, Dash: "dash"}),
				model.NewRegion(dates[start], dates[end], minLine.At(float64(start)), maxLine.At(float64(start)),
					model.Style{Fill: "rgba(33, 150, 243, 0.08)"}),
			}

			matches = append(matches, model.Match{
				Pattern:     d.Name(),
				Start:       dates[start],
				End:         dates[end],
				Confidence:  round2(confidence),
				Description: fmt.Sprintf("Falling Wedge detected (%d bars)", end-start),
				Annotations: annotations,
			})
		}
	}
	return Deduplicate(matches)
}
