package svmstudy

import (
	"fmt"

	"github.com/thalesfsp/svmstudy/svm"
)

// Classifier is the capability the engine trains and scores. Implementations
// must be usable from one goroutine at a time; the engine builds a fresh
// instance per trial and per fold.
type Classifier interface {
	// Fit trains on rows X with labels y in {0, 1}.
	Fit(X [][]float64, y []int) error

	// Predict returns a class in {0, 1} per row.
	Predict(X [][]float64) ([]int, error)

	// PredictProba returns the positive-class probability per row.
	PredictProba(X [][]float64) ([]float64, error)
}

// ClassifierFactory builds an unfitted classifier from a parameter record.
type ClassifierFactory func(params svm.Params) (Classifier, error)

// DefaultFactory builds the LS-SVM classifier of the svm package.
func DefaultFactory(params svm.Params) (Classifier, error) {
	return svm.New(params)
}

// DefaultClassifierSeed is the fixed seed forced on every classifier built by
// the engine.
const DefaultClassifierSeed = 42

// SVMParamsFrom converts a sampled configuration into the tagged classifier
// record, forcing seed and probability outputs. It fails with
// ErrConfiguration when the kernel's required parameters are missing or
// unexpected ones are present.
func SVMParamsFrom(p Params, seed int64) (svm.Params, error) {
	c, ok := p.Float(ParamC)
	if !ok {
		return svm.Params{}, fmt.Errorf("%w: missing %s", ErrConfiguration, ParamC)
	}

	name, ok := p.Choice(ParamKernel)
	if !ok {
		return svm.Params{}, fmt.Errorf("%w: missing %s", ErrConfiguration, ParamKernel)
	}

	kernel, err := svm.ParseKernel(name)
	if err != nil {
		return svm.Params{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	out := svm.Params{
		C:           c,
		Kernel:      kernel,
		Seed:        seed,
		Probability: true,
	}

	if gamma, ok := p.Float(ParamGamma); ok {
		out.Gamma = svm.Float(gamma)
	}

	if degree, ok := p.Int(ParamDegree); ok {
		out.Degree = svm.Int(degree)
	}

	if err := out.Validate(); err != nil {
		return svm.Params{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return out, nil
}
