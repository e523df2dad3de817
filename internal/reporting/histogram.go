package reporting

import (
	"errors"
	"sort"
)

// DefaultDisplayPercentile caps the histogram x-axis at the 95th percentile of survivors.
const DefaultDisplayPercentile = 0.95

// DefaultBins is the number of histogram bins.
const DefaultBins = 100

// ErrAllBust is returned when no trial survived, so there is nothing to plot.
var ErrAllBust = errors.New("cannot plot histogram: all simulations went bust")

// SurvivingStakes returns the stakes > 0, in input order.
func SurvivingStakes(stakes []float64) []float64 {
	out := make([]float64, 0, len(stakes))
	for _, s := range stakes {
		if s > 0 {
			out = append(out, s)
		}
	}
	return out
}

// DisplayCutoff returns the surviving stake at index int(n*percentile) of the
// sorted survivors, clamped to the last index. Returns ErrAllBust when no stake is positive.
func DisplayCutoff(stakes []float64, percentile float64) (float64, error) {
	survivors := SurvivingStakes(stakes)
	if len(survivors) == 0 {
		return 0, ErrAllBust
	}
	sort.Float64s(survivors)

	idx := int(float64(len(survivors)) * percentile)
	if idx >= len(survivors) {
		idx = len(survivors) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return survivors[idx], nil
}

// BuildHistogram counts values into `bins` equal-width bins over [0, max].
// Values outside the range are not counted; a value equal to max falls in the last bin.
// Returns nil for bins <= 0 or max <= 0.
func BuildHistogram(values []float64, bins int, max float64) []Bin {
	if bins <= 0 || !(max > 0) {
		return nil
	}

	width := max / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = float64(i) * width
		out[i].Hi = float64(i+1) * width
	}
	out[bins-1].Hi = max

	for _, v := range values {
		if v < 0 || v > max {
			continue
		}
		idx := int(v / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// BinTotal sums the counts of bins.
func BinTotal(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}
