package svmstudy

import (
	"math"
	"slices"
)

//////
// Helper functions.
//////

// inf is the sentinel objective value of undefined and failed trials.
var inf = math.Inf(1)

// Helper function used by PI and EI to compute the cumulative distribution
// function of the standard normal distribution.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Helper function used by EI to compute the probability density function
// of the standard normal distribution.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// percentile returns the p-th percentile (0 <= p <= 100) of values using
// linear interpolation between the closest ranks (Hyndman-Fan type 7).
// values is not modified. It returns NaN for empty input.
//
// Example: percentile([1 2 3 4], 25) = 1.75.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return sortedPercentile(sorted, p)
}

// sortedPercentile is percentile for input already sorted ascending.
func sortedPercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}

	rank := clamp(p, 0, 100) / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)

	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
