package pattern

import (
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

// VCP detects the Volatility Contraction Pattern: successive price
// contractions under a pivot high, each tighter than the last, with
// volume drying up. Thresholds adapt to the series cadence, and the
// fields allow a stricter calibration than the registered default.
type VCP struct {
	// CeilingTolerance bounds how far a contraction high may sit from
	// the pivot high, relative to the pivot.
	CeilingTolerance float64
	// Minimum contraction counts by cadence.
	MinContractionsDaily int
	MinContractionsSlow  int
	// RequireRisingLows additionally demands monotonically
	// non-decreasing contraction lows.
	RequireRisingLows bool
	// Final tightness: with several contractions the last range must
	// shrink to FinalSqueezeRatio of the first or below FinalRangeLimit
	// percent; a lone contraction must stay below SingleRangeLimit.
	FinalSqueezeRatio float64
	FinalRangeLimit   float64
	SingleRangeLimit  float64
}

// NewVCP returns the permissive calibration bound to the registry.
func NewVCP() *VCP {
	return &VCP{
		CeilingTolerance:     0.08,
		MinContractionsDaily: 2,
		MinContractionsSlow:  1,
		FinalSqueezeRatio:    0.8,
		FinalRangeLimit:      10,
		SingleRangeLimit:     15,
	}
}

// NewStrictVCP returns a tighter calibration: narrower ceiling, two
// contractions at every cadence, rising lows and a harder final squeeze.
// It is not registered; callers construct it explicitly.
func NewStrictVCP() *VCP {
	return &VCP{
		CeilingTolerance:     0.04,
		MinContractionsDaily: 2,
		MinContractionsSlow:  2,
		RequireRisingLows:    true,
		FinalSqueezeRatio:    0.7,
		FinalRangeLimit:      8,
		SingleRangeLimit:     15,
	}
}

func (d *VCP) Name() string { return NameVCP }

func (d *VCP) Description() string {
	return "Volatility Contraction Pattern: successive range contractions under a pivot high, a sign of accumulation."
}

const (
	vcpMinBarsDaily   = 60
	vcpMinBarsSlow    = 24
	vcpMaxContraction = 5
)

type contraction struct {
	lowIdx, highIdx int
	lowVal, highVal float64
	rangePct        float64
}

var vcpPalette = []string{
	"rgba(255, 152, 0, 0.3)",
	"rgba(255, 193, 7, 0.25)",
	"rgba(255, 235, 59, 0.2)",
	"rgba(205, 220, 57, 0.15)",
	"rgba(139, 195, 74, 0.1)",
}

func (d *VCP) Detect(s *model.Series) []model.Match {
	n := s.Len()
	if n < 2 {
		return nil
	}

	// Cadence heuristic: long series are daily, otherwise judge by the
	// spacing of the first two bars.
	spacingDays := int(s.BarSpacing().Hours() / 24)
	isDaily := n > 100 || spacingDays == 1

	minLen := vcpMinBarsSlow
	if isDaily {
		minLen = vcpMinBarsDaily
	}
	if n < minLen {
		return nil
	}

	highs := s.Highs()
	lows := s.Lows()
	volumes := s.Volumes()
	dates := s.Times()

	order := maxInt(2, n/20)
	maxIdx := LocalMaxima(highs, order)
	minIdx := LocalMinima(lows, order)
	if len(maxIdx) < 2 || len(minIdx) < 2 {
		return nil
	}

	minContractions := d.MinContractionsSlow
	if isDaily {
		minContractions = d.MinContractionsDaily
	}

	var matches []model.Match
	for hi := 0; hi+1 < len(maxIdx); hi++ {
		pivotIdx := maxIdx[hi]
		pivotHigh := highs[pivotIdx]

		var contractions []contraction
		cursor := pivotIdx
		for len(contractions) < vcpMaxContraction {
			lo, ok := firstAfter(minIdx, cursor)
			if !ok {
				break
			}
			hiNext, ok := firstAfter(maxIdx, lo)
			if !ok {
				break
			}
			contractions = append(contractions, contraction{
				lowIdx:   lo,
				highIdx:  hiNext,
				lowVal:   lows[lo],
				highVal:  highs[hiNext],
				rangePct: (highs[hiNext] - lows[lo]) / pivotHigh * 100,
			})
			cursor = hiNext
		}

		if len(contractions) < minContractions {
			continue
		}

		// Each contraction tighter than the one before it.
		if !rangesDecreasing(contractions) {
			continue
		}

		// All contraction highs must hug the pivot resistance.
		ceilingOK := true
		for _, c := range contractions {
			if math.Abs(c.highVal-pivotHigh)/pivotHigh >= d.CeilingTolerance {
				ceilingOK = false
				break
			}
		}
		if !ceilingOK {
			continue
		}

		if d.RequireRisingLows && !lowsNonDecreasing(contractions) {
			continue
		}

		first := contractions[0].rangePct
		last := contractions[len(contractions)-1].rangePct
		if len(contractions) > 1 {
			if !(last <= first*d.FinalSqueezeRatio || last < d.FinalRangeLimit) {
				continue
			}
		} else if first >= d.SingleRangeLimit {
			continue
		}

		startIdx := pivotIdx
		endIdx := contractions[len(contractions)-1].highIdx

		volContracting := true
		if endIdx > startIdx+5 {
			mid := startIdx + (endIdx-startIdx)/2
			volContracting = mean(volumes[mid:endIdx]) < mean(volumes[startIdx:mid])
		}

		confidence := 0.4
		confidence += 0.15 * float64(minInt(len(contractions), 4)) / 4
		if volContracting {
			confidence += 0.15
		}
		if len(contractions) > 1 {
			confidence += 0.1 * (1 - last/first)
		} else {
			confidence += 0.05
		}
		confidence = math.Min(0.95, confidence)

		annotations := []model.Annotation{
			model.NewLine(dates[startIdx], pivotHigh, dates[endIdx], pivotHigh,
				model.Style{Color: "rgba(156, 39, 176, 0.7)", Width: 2, Dash: "dot"}),
		}
		for ci, c := range contractions {
			annotations = append(annotations, model.NewRegion(
				dates[c.lowIdx], dates[c.highIdx], c.lowVal, c.highVal,
				model.Style{Fill: vcpPalette[ci%len(vcpPalette)]}))
		}

		matches = append(matches, model.Match{
			Pattern:     d.Name(),
			Start:       dates[startIdx],
			End:         dates[endIdx],
			Confidence:  round2(confidence),
			Description: fmt.Sprintf("VCP with %d contractions (%.1f%% → %.1f%%)", len(contractions), first, last),
			Annotations: annotations,
		})
	}
	return Deduplicate(matches)
}

// firstAfter returns the first index in sorted idx strictly greater
// than after.
func firstAfter(idx []int, after int) (int, bool) {
	for _, v := range idx {
		if v > after {
			return v, true
		}
	}
	return 0, false
}

func rangesDecreasing(cs []contraction) bool {
	for i := 1; i < len(cs); i++ {
		if cs[i-1].rangePct <= cs[i].rangePct {
			return false
		}
	}
	return true
}

func lowsNonDecreasing(cs []contraction) bool {
	for i := 1; i < len(cs); i++ {
		if cs[i].lowVal < cs[i-1].lowVal {
			return false
		}
	}
	return true
}
