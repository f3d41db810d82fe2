package pattern

import (
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

// Pennant detects the short-term continuation pattern of a sharp move
// (the flagpole) followed by a brief symmetric consolidation with a
// contracting range.
type Pennant struct{}

// NewPennant returns the detector with its standard thresholds.
func NewPennant() *Pennant { return &Pennant{} }

func (d *Pennant) Name() string { return NamePennant }

func (d *Pennant) Description() string {
	return "Short-term continuation: a sharp flagpole move followed by a small symmetric consolidation."
}

const (
	pennantMinBars     = 25
	flagpoleMaxBars    = 10
	pennantMaxBars     = 20
	pennantMinLen      = 5
	minFlagpoleMove    = 0.05
	pennantContraction = 0.8
)

func (d *Pennant) Detect(s *model.Series) []model.Match {
	n := s.Len()
	if n < pennantMinBars {
		return nil
	}
	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()
	dates := s.Times()

	var matches []model.Match
	for end := n - 1; end > 15; end-- {
		for pLen := pennantMinLen; pLen <= pennantMaxBars; pLen++ {
			pStart := end - pLen
			if pStart < flagpoleMaxBars {
				continue
			}

			// Flagpole: a sharp move ending where the pennant begins.
			flagStart := 0
			flagMove := 0.0
			found := false
			for fLen := 3; fLen <= flagpoleMaxBars; fLen++ {
				fStart := pStart - fLen
				move := (closes[pStart] - closes[fStart]) / closes[fStart]
				if math.Abs(move) >= minFlagpoleMove {
					found = true
					flagStart = fStart
					flagMove = move
					break
				}
			}
			if !found {
				continue
			}

			half := pLen / 2
			if half < 2 {
				continue
			}
			max1 := sliceMax(highs[pStart : pStart+half])
			max2 := sliceMax(highs[pStart+half : end+1])
			min1 := sliceMin(lows[pStart : pStart+half])
			min2 := sliceMin(lows[pStart+half : end+1])

			// Highs roughly decreasing, lows roughly increasing.
			if max2 > max1*1.01 || min2 < min1*0.99 {
				continue
			}

			range1 := max1 - min1
			range2 := max2 - min2
			if range1 <= 0 {
				continue
			}
			if range2 > range1*pennantContraction {
				continue
			}

			confidence := 0.5
			confidence += 0.2 * (math.Abs(flagMove) / 0.1)
			confidence += 0.2 * (1 - range2/range1)
			confidence = clamp(confidence, 0.4, 0.95)

			annotations := []model.Annotation{
				model.NewLine(dates[flagStart], closes[flagStart], dates[pStart], closes[pStart],
					model.Style{Color: "rgba(156, 39, 176, 0.8)", Width: 3}),
				model.NewLine(dates[pStart], max1, dates[end], max2,
					model.Style{Color: "rgba(255, 82, 82, 0.8)", Width: 2}),
				model.NewLine(dates[pStart], min1, dates[end], min2,
					model.Style{Color: "rgba(76, 175, 80, 0.8)", Width: 2}),
			}

			matches = append(matches, model.Match{
				Pattern:     d.Name(),
				Start:       dates[flagStart],
				End:         dates[end],
				Confidence:  round2(confidence),
				Description: fmt.Sprintf("Pennant detected (flagpole %.1f%%)", flagMove*100),
				Annotations: annotations,
			})
			break // one candidate per end position
		}
	}
	return Deduplicate(matches)
}

func sliceMax(vals []float64) float64 {
	best := vals[0]
	for _, v := range vals[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

func sliceMin(vals []float64) float64 {
	best := vals[0]
	for _, v := range vals[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
