package svmstudy

import "math"

//////
// Acquisition functions for GPSampler.
// Each one turns the surrogate's prediction for a candidate configuration into
// a score; the sampler evaluates the candidate with the lowest score. All of
// them assume the objective is a loss (lower is better).
//////

// UCB is the confidence-bound rule for losses: the predicted mean minus Beta
// standard deviations. High Beta favours uncertain regions.
//
// Example:
//
//	params := AcquisitionParams{Beta: 2.0}
//	score := UCB(0.25, 0.04, params) // 0.25 - 2*0.2 = -0.15
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement returns the negated probability that the
// candidate's loss falls below BestSoFar - Xi.
//
// Use it when small but likely improvements are preferred.
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		if mean < params.BestSoFar-params.Xi {
			return -1
		}

		return 0
	}

	z := (params.BestSoFar - params.Xi - mean) / sigma

	return -normalCDF(z)
}

// ExpectedImprovement returns the negated expected amount by which the
// candidate's loss undercuts BestSoFar - Xi.
//
// With no finite BestSoFar yet every candidate scores the same, so the
// sampler keeps the first one.
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	if !isFinite(params.BestSoFar) {
		return 0
	}

	sigma := math.Sqrt(variance)
	improvement := params.BestSoFar - params.Xi - mean

	if sigma == 0 {
		return -math.Max(improvement, 0)
	}

	z := improvement / sigma

	return -(improvement*normalCDF(z) + sigma*normalPDF(z))
}

// ThompsonSampling draws one sample from the predictive distribution.
// params.RandomState must not be nil.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*params.RandomState.NormFloat64()
}
