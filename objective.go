package svmstudy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thalesfsp/svmstudy/dataset"
	"github.com/thalesfsp/svmstudy/svm"
)

// ObjectiveOptions configures NewValidationObjective.
type ObjectiveOptions struct {
	// ClassifierSeed is forced on every classifier the objective builds.
	ClassifierSeed int64

	// Logger receives per-trial events. Nil means zap.NewNop().
	Logger *zap.Logger
}

// DefaultObjectiveOptions uses DefaultClassifierSeed.
func DefaultObjectiveOptions() ObjectiveOptions {
	return ObjectiveOptions{ClassifierSeed: DefaultClassifierSeed}
}

// NewValidationObjective returns the objective 1 - AUC of a classifier fitted
// on train and scored on val.
//
// The objective is +Inf, and never an error, when val holds a single class
// or when building, fitting or predicting fails, so the search goes on. A
// configuration that cannot be turned into classifier parameters returns an
// ErrConfiguration error, which stops the study. The value is reported at
// step 0 before the pruner is consulted.
func NewValidationObjective(factory ClassifierFactory, train, val dataset.Dataset, opts ObjectiveOptions) ObjectiveFunc {
	if factory == nil {
		factory = DefaultFactory
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	singleClass := !val.HasBothClasses()

	return func(ctx context.Context, trial *Trial) (float64, error) {
		params, err := SVMParamsFrom(trial.Params(), opts.ClassifierSeed)
		if err != nil {
			return inf, err
		}

		if err := ctx.Err(); err != nil {
			return inf, err
		}

		loss := inf

		if singleClass {
			logger.Debug("validation partition has a single class; objective undefined",
				zap.Int("trial", trial.Number()),
			)
		} else {
			auc, err := fitAndScore(factory, params, train, val)
			if err != nil {
				logger.Warn("trial classifier failed; objective undefined",
					zap.Int("trial", trial.Number()),
					zap.Stringer("params", params),
					zap.Error(err),
				)
			} else if v, ok := auc.Value(); ok {
				loss = 1 - v
			}
		}

		trial.Report(0, loss)

		if trial.ShouldPrune() {
			return loss, ErrTrialPruned
		}

		return loss, nil
	}
}

// fitAndScore trains a fresh classifier and returns its validation AUC.
func fitAndScore(factory ClassifierFactory, params svm.Params, train, val dataset.Dataset) (Score, error) {
	_, probs, err := trainAndPredict(factory, params, train, val, false)
	if err != nil {
		return Undefined, err
	}

	return ROCAUC(val.Labels, probs), nil
}

// trainAndPredict fits a fresh classifier on train and returns its
// positive-class probabilities on val, plus class predictions when
// withClasses is set.
func trainAndPredict(factory ClassifierFactory, params svm.Params, train, val dataset.Dataset, withClasses bool) ([]int, []float64, error) {
	clf, err := factory(params)
	if err != nil {
		return nil, nil, fmt.Errorf("build classifier: %w", err)
	}

	if err := clf.Fit(train.Features, train.Labels); err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}

	probs, err := clf.PredictProba(val.Features)
	if err != nil {
		return nil, nil, fmt.Errorf("predict probabilities: %w", err)
	}

	if len(probs) != val.Len() {
		return nil, nil, fmt.Errorf("predict probabilities: got %d scores for %d rows", len(probs), val.Len())
	}

	for i, p := range probs {
		if !(p >= 0 && p <= 1) {
			return nil, nil, fmt.Errorf("predict probabilities: row %d: %v is not in [0, 1]", i, p)
		}
	}

	if !withClasses {
		return nil, probs, nil
	}

	predicted, err := clf.Predict(val.Features)
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}

	if len(predicted) != val.Len() {
		return nil, nil, fmt.Errorf("predict: got %d classes for %d rows", len(predicted), val.Len())
	}

	return predicted, probs, nil
}
