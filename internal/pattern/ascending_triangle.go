package pattern

import (
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

// AscendingTriangle detects the bullish continuation pattern formed by a
// flat resistance zone above a series of rising lows converging toward
// an apex.
type AscendingTriangle struct{}

// NewAscendingTriangle returns the detector with its standard thresholds.
func NewAscendingTriangle() *AscendingTriangle { return &AscendingTriangle{} }

func (d *AscendingTriangle) Name() string { return NameAscendingTriangle }

func (d *AscendingTriangle) Description() string {
	return "Bullish continuation: a flat resistance zone with rising lows converging toward the apex."
}

const (
	triangleMinBars    = 30
	triangleOrder      = 5
	triangleMinSpan    = 15
	triangleMaxSpan    = 120
	triangleFlatTol    = 0.015 // resistance std/mean tolerance for "flat"
	triangleSlopeRatio = 0.4   // resistance must be much flatter than support
	triangleMinConf    = 0.4
	triangleMaxConf    = 0.95
)

func (d *AscendingTriangle) Detect(s *model.Series) []model.Match {
	if s.Len() < triangleMinBars {
		return nil
	}
	highs := s.Highs()
	lows := s.Lows()
	dates := s.Times()

	maxIdx := LocalMaxima(highs, triangleOrder)
	minIdx := LocalMinima(lows, triangleOrder)
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
			if end-start < triangleMinSpan || end-start > triangleMaxSpan {
				continue
			}

			maxVals := []float64{highs[maxWin[0]], highs[maxWin[1]], highs[maxWin[2]]}
			minVals := []float64{lows[minWin[0]], lows[minWin[1]], lows[minWin[2]]}

			// Flat resistance: the three highs must be roughly equal.
			maxStdPct := popStd(maxVals) / mean(maxVals)
			if maxStdPct > triangleFlatTol {
				continue
			}

			// Rising support: the three lows must be strictly increasing.
			if !(minVals[0] < minVals[1] && minVals[1] < minVals[2]) {
				continue
			}

			minLine, okMin := fitIndexed(minWin, lows)
			maxLine, okMax := fitIndexed(maxWin, highs)
			if !okMin || !okMax {
				continue
			}
			if math.Abs(maxLine.Slope) > math.Abs(minLine.Slope)*triangleSlopeRatio {
				continue
			}
			if minLine.Slope <= 0 {
				continue
			}

			confidence := 0.5
			confidence += 0.2 * (1 - maxStdPct/triangleFlatTol)
			startRange := highs[start] - lows[start]
			if startRange > 0 {
				tightness := (highs[end] - lows[end]) / startRange
				confidence += 0.2 * (1 - tightness)
			}
			confidence = clamp(confidence, triangleMinConf, triangleMaxConf)

			avgRes := mean(maxVals)
			annotations := []model.Annotation{
				model.NewLine(dates[start], avgRes, dates[end], avgRes,
					model.Style{Color: "rgba(255, 82, 82, 0.8)", Width: 2}),
				model.NewLine(dates[start], minLine.At(float64(start)), dates[end], minLine.At(float64(end)),
					model.Style{Color: "rgba(76, 175, 80, 0.8)", Width: 2}),
				model.NewRegion(dates[start], dates[end], minLine.At(float64(start)), avgRes,
					model.Style{Fill: "rgba(33, 150, 243, 0.05)"}),
			}

			matches = append(matches, model.Match{
				Pattern:     d.Name(),
				Start:       dates[start],
				End:         dates[end],
				Confidence:  round2(confidence),
				Description: fmt.Sprintf("Ascending Triangle detected (%d bars)", end-start),
				Annotations: annotations,
			})
		}
	}
	return Deduplicate(matches)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
