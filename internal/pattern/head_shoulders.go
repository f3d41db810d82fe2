package pattern

import (
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

// InverseHeadAndShoulders detects the bullish reversal pattern of three
// successive troughs where the middle one (the head) is the deepest and
// the outer two (the shoulders) sit at roughly the same level, joined by
// a neckline through the intervening peaks.
type InverseHeadAndShoulders struct{}

// NewInverseHeadAndShoulders returns the detector with its standard
// thresholds.
func NewInverseHeadAndShoulders() *InverseHeadAndShoulders {
	return &InverseHeadAndShoulders{}
}

func (d *InverseHeadAndShoulders) Name() string { return NameInverseHeadAndShoulders }

func (d *InverseHeadAndShoulders) Description() string {
	return "Bullish reversal: three successive troughs with the middle one (the head) the deepest."
}

const (
	ihsMinBars     = 40
	ihsOrder       = 5
	ihsShoulderTol = 0.6 // shoulder level difference relative to head depth
)

func (d *InverseHeadAndShoulders) Detect(s *model.Series) []model.Match {
	if s.Len() < ihsMinBars {
		return nil
	}
	lows := s.Lows()
	highs := s.Highs()
	dates := s.Times()

	minIdx := LocalMinima(lows, ihsOrder)
	if len(minIdx) < 3 {
		return nil
	}

	var matches []model.Match
	for i := 0; i+2 < len(minIdx); i++ {
		ls := minIdx[i]
		h := minIdx[i+1]
		rs := minIdx[i+2]

		lsVal := lows[ls]
		hVal := lows[h]
		rsVal := lows[rs]

		// The head must be strictly deeper than both shoulders.
		if hVal >= lsVal || hVal >= rsVal {
			continue
		}
		headDepth := math.Max(lsVal, rsVal) - hVal
		if headDepth <= 0 {
			continue
		}
		if math.Abs(lsVal-rsVal) > headDepth*ihsShoulderTol {
			continue
		}

		// Neckline through the peaks flanking the head.
		p1 := ls + argMax(highs[ls:h+1])
		p2 := h + argMax(highs[h:rs+1])

		slope := 0.0
		if p1 != p2 {
			slope = (highs[p2] - highs[p1]) / float64(p2-p1)
		}
		neck := Line{Slope: slope, Intercept: highs[p1] - slope*float64(p1)}

		confidence := 0.5
		symmetry := 1 - math.Abs(float64((h-ls)-(rs-h)))/float64(rs-ls)
		confidence += 0.2 * math.Max(0, symmetry)
		if headDepth/hVal > 0.05 {
			confidence += 0.15
		}
		confidence = clamp(confidence, 0.4, 0.95)

		annotations := []model.Annotation{
			model.NewLine(dates[ls], neck.At(float64(ls)), dates[rs], neck.At(float64(rs)),
				model.Style{Color: "rgba(156, 39, 176, 0.8)", Width: 2, Dash: "dash"}),
			model.NewMarker(dates[ls], lsVal,
				model.Style{Symbol: "triangle-up", Color: "blue", Size: 10}),
			model.NewMarker(dates[h], hVal,
				model.Style{Symbol: "triangle-up", Color: "red", Size: 12}),
			model.NewMarker(dates[rs], rsVal,
				model.Style{Symbol: "triangle-up", Color: "blue", Size: 10}),
		}

		matches = append(matches, model.Match{
			Pattern:     d.Name(),
			Start:       dates[ls],
			End:         dates[rs],
			Confidence:  round2(confidence),
			Description: fmt.Sprintf("Inverse Head and Shoulders (head %s)", dates[h].Format("2006-01-02")),
			Annotations: annotations,
		})
	}
	return Deduplicate(matches)
}

// argMax returns the index of the first maximal value.
func argMax(vals []float64) int {
	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}
	return best
}
