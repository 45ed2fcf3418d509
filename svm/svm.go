// Package svm provides a least-squares support vector machine for binary
// classification. It is the reference classifier driven by the svmstudy
// search and evaluation engine.
//
// Training solves the LS-SVM dual system
//
//	| 0   1^T       | | b     |   | 0 |
//	| 1   K + I/C   | | alpha | = | t |
//
// where K is the Gram matrix of the training rows and t holds the labels
// mapped to -1/+1. The decision value of a row x is sum(alpha_i * k(x, x_i)) + b;
// Predict thresholds it at zero and PredictProba passes it through a logistic
// link, so both rank rows identically.
package svm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned by prediction methods before Fit succeeded.
	ErrNotFitted = errors.New("svm: classifier is not fitted")

	// ErrProbabilityDisabled is returned by PredictProba when the classifier
	// was built without Params.Probability.
	ErrProbabilityDisabled = errors.New("svm: probability outputs disabled")

	// ErrSingleClass is returned by Fit when the training labels contain
	// only one class.
	ErrSingleClass = errors.New("svm: training labels contain a single class")

	// ErrInvalidInput is returned for empty, ragged or mislabelled inputs.
	ErrInvalidInput = errors.New("svm: invalid input")
)

// Classifier is an LS-SVM binary classifier. It is not safe for concurrent
// Fit calls; prediction after Fit is read-only.
type Classifier struct {
	params Params
	kernel kernelFunc

	support [][]float64
	alpha   []float64
	bias    float64
	dim     int
}

// New validates params and returns an unfitted classifier.
func New(params Params) (*Classifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Classifier{
		params: params,
		kernel: newKernelFunc(params),
	}, nil
}

// Params returns the configuration the classifier was built with.
func (c *Classifier) Params() Params {
	return c.params
}

// Fit trains the classifier on rows X with labels y in {0, 1}.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	dim, err := checkRows(X, -1)
	if err != nil {
		return err
	}

	if len(y) != len(X) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrInvalidInput, len(X), len(y))
	}

	var positives int
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("%w: label %d at row %d is not 0 or 1", ErrInvalidInput, label, i)
		}

		positives += label
	}

	if positives == 0 || positives == len(y) {
		return ErrSingleClass
	}

	n := len(X)

	// Bordered system: first row/column carries the bias constraint.
	a := mat.NewDense(n+1, n+1, nil)
	rhs := mat.NewVecDense(n+1, nil)

	for i := 0; i < n; i++ {
		a.Set(0, i+1, 1)
		a.Set(i+1, 0, 1)

		for j := i; j < n; j++ {
			v := c.kernel(X[i], X[j])
			if i == j {
				v += 1 / c.params.C
			}

			a.Set(i+1, j+1, v)
			a.Set(j+1, i+1, v)
		}

		rhs.SetVec(i+1, target(y[i]))
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, rhs); err != nil {
		// Ill-conditioned but finite systems still yield a usable solution.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return fmt.Errorf("svm: solve dual system: %w", err)
		}
	}

	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = sol.AtVec(i + 1)

		if math.IsNaN(alpha[i]) || math.IsInf(alpha[i], 0) {
			return fmt.Errorf("svm: solve dual system: non-finite coefficient at row %d", i)
		}
	}

	support := make([][]float64, n)
	for i, row := range X {
		support[i] = append([]float64(nil), row...)
	}

	c.support = support
	c.alpha = alpha
	c.bias = sol.AtVec(0)
	c.dim = dim

	return nil
}

// DecisionFunction returns the signed distance-like score of every row.
// Positive values favour class 1.
func (c *Classifier) DecisionFunction(X [][]float64) ([]float64, error) {
	if c.support == nil {
		return nil, ErrNotFitted
	}

	if _, err := checkRows(X, c.dim); err != nil {
		return nil, err
	}

	scores := make([]float64, len(X))
	for i, row := range X {
		sum := c.bias
		for j, sv := range c.support {
			sum += c.alpha[j] * c.kernel(row, sv)
		}

		scores[i] = sum
	}

	return scores, nil
}

// Predict returns the predicted class of every row.
func (c *Classifier) Predict(X [][]float64) ([]int, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(scores))
	for i, s := range scores {
		if s > 0 {
			labels[i] = 1
		}
	}

	return labels, nil
}

// PredictProba returns the positive-class probability of every row.
func (c *Classifier) PredictProba(X [][]float64) ([]float64, error) {
	if !c.params.Probability {
		return nil, ErrProbabilityDisabled
	}

	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = logistic(s)
	}

	return probs, nil
}

//////
// Helpers.
//////

// checkRows returns the common row width. When dim is non-negative every row
// must have exactly that width.
func checkRows(X [][]float64, dim int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("%w: no rows", ErrInvalidInput)
	}

	if dim < 0 {
		dim = len(X[0])
	}

	if dim == 0 {
		return 0, fmt.Errorf("%w: rows have no features", ErrInvalidInput)
	}

	for i, row := range X {
		if len(row) != dim {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrInvalidInput, i, len(row), dim)
		}
	}

	return dim, nil
}

func target(label int) float64 {
	if label == 1 {
		return 1
	}

	return -1
}

// logistic maps a decision value into (0, 1). The factor 2 makes a decision
// value of +/-1, the training target, map to roughly 0.88 / 0.12.
func logistic(s float64) float64 {
	return 1 / (1 + math.Exp(-2*s))
}
