package metrics

import (
	"math"
	"sort"

	"wager-lab/internal/domain"
)

// Summarize reduces the terminal stakes of a run to its statistics.
// Every trial counts, bankruptcies included as 0. The input is not modified.
// An empty input yields a zero Summary.
func Summarize(stakes []float64) domain.Summary {
	n := len(stakes)
	if n == 0 {
		return domain.Summary{}
	}

	// Sort a copy for order statistics
	sorted := make([]float64, n)
	copy(sorted, stakes)
	sort.Float64s(sorted)

	bankrupt := computeBankruptcyCount(stakes)
	mean := computeMean(stakes)

	return domain.Summary{
		Simulations:     n,
		Mean:            mean,
		Median:          computePercentile(sorted, 0.50),
		BankruptcyCount: bankrupt,
		BankruptcyRate:  computeRate(bankrupt, n),

		Survivors: computeSurvivors(stakes),
		Stddev:    computeStddev(stakes, mean),
		Min:       sorted[0],
		Max:       sorted[n-1],
		P10:       computePercentile(sorted, 0.10),
		P90:       computePercentile(sorted, 0.90),
	}
}

// computeBankruptcyCount counts trials that ended at exactly 0.
func computeBankruptcyCount(stakes []float64) int {
	count := 0
	for _, s := range stakes {
		if s == 0 {
			count++
		}
	}
	return count
}

// computeSurvivors counts trials that ended with a positive stake.
func computeSurvivors(stakes []float64) int {
	count := 0
	for _, s := range stakes {
		if s > 0 {
			count++
		}
	}
	return count
}

// computeRate returns count / total as a percentage.
func computeRate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// computeMean calculates arithmetic mean of values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile). At p = 0.5 this is the statistical
// median: the mean of the two middle values for even n.
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	// Linear interpolation
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
