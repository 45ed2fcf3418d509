package svm

import "math"

// kernelFunc measures the similarity between two feature vectors.
type kernelFunc func(x1, x2 []float64) float64

// newKernelFunc builds the kernel function for validated params.
//
// Mathematical formulas (coef0 is fixed at zero):
//
//	linear:  k(x1, x2) = <x1, x2>
//	rbf:     k(x1, x2) = exp(-gamma * sum((x1 - x2)^2))
//	poly:    k(x1, x2) = (gamma * <x1, x2>)^degree
//	sigmoid: k(x1, x2) = tanh(gamma * <x1, x2>)
func newKernelFunc(p Params) kernelFunc {
	switch p.Kernel {
	case RBF:
		gamma := *p.Gamma

		return func(x1, x2 []float64) float64 {
			return math.Exp(-gamma * squaredDistance(x1, x2))
		}
	case Poly:
		gamma, degree := *p.Gamma, float64(*p.Degree)

		return func(x1, x2 []float64) float64 {
			return math.Pow(gamma*dot(x1, x2), degree)
		}
	case Sigmoid:
		gamma := *p.Gamma

		return func(x1, x2 []float64) float64 {
			return math.Tanh(gamma * dot(x1, x2))
		}
	default:
		return dot
	}
}

// dot panics if the vectors have different lengths; callers check
// dimensionality before building the Gram matrix.
func dot(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("svm: input vectors must have the same length")
	}

	var sum float64
	for i := range x1 {
		sum += x1[i] * x2[i]
	}

	return sum
}

func squaredDistance(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("svm: input vectors must have the same length")
	}

	var sum float64
	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return sum
}
