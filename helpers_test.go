package svmstudy

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thalesfsp/svmstudy/dataset"
	"github.com/thalesfsp/svmstudy/svm"
)

// separableData returns n rows whose first feature splits the classes with a
// wide gap. Labels alternate 0, 1, 0, 1...
func separableData(t *testing.T, n int, seed uint64) dataset.Dataset {
	t.Helper()

	rng := rand.New(rand.NewPCG(seed, seed))

	X := make([][]float64, n)
	y := make([]int, n)

	for i := range X {
		label := i % 2
		x1 := -4 + 2*rng.Float64()
		if label == 1 {
			x1 = 2 + 2*rng.Float64()
		}

		X[i] = []float64{x1, -1 + 2*rng.Float64()}
		y[i] = label
	}

	d, err := dataset.New(X, y)
	require.NoError(t, err)

	return d
}

// labeledData returns one single-feature row per label.
func labeledData(t *testing.T, labels ...int) dataset.Dataset {
	t.Helper()

	X := make([][]float64, len(labels))
	for i, y := range labels {
		X[i] = []float64{float64(y)}
	}

	d, err := dataset.New(X, labels)
	require.NoError(t, err)

	return d
}

// echoClassifier predicts the first feature as the class and as the
// positive-class probability.
type echoClassifier struct {
	fitErr error
}

func (c *echoClassifier) Fit([][]float64, []int) error { return c.fitErr }

func (c *echoClassifier) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, row := range X {
		if row[0] > 0.5 {
			out[i] = 1
		}
	}

	return out, nil
}

func (c *echoClassifier) PredictProba(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = row[0]
	}

	return out, nil
}

func echoFactory(svm.Params) (Classifier, error) {
	return &echoClassifier{}, nil
}

var errFit = errors.New("fit exploded")

func failingFactory(svm.Params) (Classifier, error) {
	return &echoClassifier{fitErr: errFit}, nil
}

// nanClassifier is an echoClassifier whose first probability is NaN.
type nanClassifier struct {
	echoClassifier
}

func (c *nanClassifier) PredictProba(X [][]float64) ([]float64, error) {
	out, err := c.echoClassifier.PredictProba(X)
	if len(out) > 0 {
		out[0] = math.NaN()
	}

	return out, err
}

func nanFactory(svm.Params) (Classifier, error) {
	return &nanClassifier{}, nil
}

// linearParams is a valid classifier configuration.
func linearParams() svm.Params {
	return svm.Params{C: 1, Kernel: svm.Linear, Seed: DefaultClassifierSeed, Probability: true}
}

// scores wraps values as defined scores.
func scores(values ...float64) []Score {
	out := make([]Score, len(values))
	for i, v := range values {
		out[i] = Defined(v)
	}

	return out
}
