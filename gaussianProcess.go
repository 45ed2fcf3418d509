package svmstudy

import "math"

//////
// Const, vars, types.
//////

// gaussianProcess is the surrogate model used by GPSampler. It predicts the
// objective value of an encoded configuration from the trials observed so far.
//
// Fields:
// - X: Encoded configurations of the observed trials, each in [0, 1]^d
// - Y: Objective values at each point in X
// - sigma: Kernel width over the encoded space
//
// GPSampler builds one model per Sample call and uses it from a single
// goroutine.
type gaussianProcess struct {
	X [][]float64
	Y []float64

	sigma float64
}

//////
// Methods.
//////

// Predict estimates the objective value and its uncertainty at x.
//
// The mean is the kernel-weighted average of the observed values, falling
// back to their plain average far from every observation. The variance is
// 1 minus the similarity to the closest observation, so it is near 0 on
// top of an observed point and near 1 far from all of them.
//
// Returns (0, 1) when nothing was observed.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	if len(gp.X) == 0 {
		return 0, 1
	}

	var (
		weighted, weights, plain float64
		closest                  float64
	)

	for i := range gp.X {
		k := rbf(x, gp.X[i], gp.sigma)

		weighted += k * gp.Y[i]
		weights += k
		plain += gp.Y[i]
		closest = math.Max(closest, k)
	}

	mean = plain / float64(len(gp.X))
	if weights > 1e-12 {
		mean = weighted / weights
	}

	// Keep a small floor so PI and EI never divide by zero.
	variance = math.Max(1-closest, 1e-9)

	return mean, variance
}

// Update adds an observation. x is copied.
func (gp *gaussianProcess) Update(x []float64, y float64) {
	newX := make([]float64, len(x))
	copy(newX, x)

	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)
}

// rbf is the similarity between two encoded configurations:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// Panics if the vectors have different lengths.
func rbf(x1, x2 []float64, sigma float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * sigma * sigma))
}

//////
// Factory.
//////

// newGaussianProcess returns an empty model with kernel width sigma. Non
// positive widths fall back to 1.0.
func newGaussianProcess(sigma float64) *gaussianProcess {
	if !(sigma > 0) {
		sigma = 1.0
	}

	return &gaussianProcess{sigma: sigma}
}
