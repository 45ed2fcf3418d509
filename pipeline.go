package svmstudy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thalesfsp/svmstudy/dataset"
	"github.com/thalesfsp/svmstudy/svm"
)

// EvaluationConfig configures Evaluate.
type EvaluationConfig struct {
	// Study configures the hyperparameter search.
	Study Config

	// Space is the searched space. A zero value means SVMSearchSpace().
	Space SearchSpace

	// Objective configures the validation objective of the search.
	Objective ObjectiveOptions

	// Factory builds every classifier of the run. Nil means DefaultFactory.
	Factory ClassifierFactory

	// CV configures the cross-validation of the best configuration.
	CV CVConfig

	// Bootstrap configures the per-metric confidence intervals.
	Bootstrap BootstrapConfig

	// Logger is handed to every stage whose own logger is nil.
	Logger *zap.Logger
}

// DefaultEvaluationConfig returns the defaults of every stage.
func DefaultEvaluationConfig() EvaluationConfig {
	return EvaluationConfig{
		Study:     DefaultConfig(),
		Space:     SVMSearchSpace(),
		Objective: DefaultObjectiveOptions(),
		CV:        DefaultCVConfig(),
		Bootstrap: DefaultBootstrapConfig(),
	}
}

// Report is the outcome of Evaluate.
type Report struct {
	// ID identifies the run.
	ID string

	// CreatedAt is the start time of the run.
	CreatedAt time.Time

	// Best is the best trial of the search.
	Best TrialRecord

	// BestParams is the classifier configuration built from Best.
	BestParams svm.Params

	// History holds every trial in order.
	History []TrialRecord

	// Complete, Pruned and Failed count trials per final state.
	Complete int
	Pruned   int
	Failed   int

	// CrossValidation is the k-fold evaluation of BestParams on train and
	// validation rows combined.
	CrossValidation CVResult

	// Intervals holds the bootstrap interval of each metric, indexed by
	// Metric.
	Intervals [NumMetrics]Interval

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
}

// Evaluate runs the full pipeline:
//  1. Search the space for the configuration minimizing 1 - validation AUC
//  2. Build the best configuration with the fixed classifier seed
//  3. Cross-validate it on the concatenation of train and val
//  4. Bootstrap a confidence interval per metric from the fold series
//
// Errors of the search, including ErrSearchExhausted, are returned as is.
func Evaluate(ctx context.Context, train, val dataset.Dataset, cfg EvaluationConfig) (Report, error) {
	start := time.Now()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Study.Logger == nil {
		cfg.Study.Logger = logger
	}

	if cfg.Objective.Logger == nil {
		cfg.Objective.Logger = logger
	}

	if cfg.CV.Logger == nil {
		cfg.CV.Logger = logger
	}

	if cfg.CV.Factory == nil {
		cfg.CV.Factory = cfg.Factory
	}

	space := cfg.Space
	if len(space.Specs) == 0 {
		space = SVMSearchSpace()
	}

	report := Report{
		ID:        uuid.New().String(),
		CreatedAt: start,
	}

	logger = logger.With(zap.String("run", report.ID))

	study, err := NewStudy(cfg.Study, space)
	if err != nil {
		return Report{}, err
	}

	logger.Info("starting search",
		zap.Int("trials", cfg.Study.Trials),
		zap.Int("train_rows", train.Len()),
		zap.Int("validation_rows", val.Len()),
	)

	objective := NewValidationObjective(cfg.Factory, train, val, cfg.Objective)

	best, err := study.Optimize(ctx, objective)
	if err != nil {
		return Report{}, fmt.Errorf("search: %w", err)
	}

	state := study.State()
	report.Best = best
	report.History = state.Trials()
	report.Complete = state.Count(TrialComplete)
	report.Pruned = state.Count(TrialPruned)
	report.Failed = state.Count(TrialFailed)

	report.BestParams, err = SVMParamsFrom(best.Params, cfg.Objective.ClassifierSeed)
	if err != nil {
		return Report{}, err
	}

	combined, err := dataset.Concat(train, val)
	if err != nil {
		return Report{}, fmt.Errorf("combine partitions: %w", err)
	}

	logger.Info("cross-validating best configuration",
		zap.Stringer("params", report.BestParams),
		zap.Int("folds", cfg.CV.Folds),
		zap.Int("rows", combined.Len()),
	)

	report.CrossValidation, err = CrossValidate(ctx, combined, report.BestParams, cfg.CV)
	if err != nil {
		return Report{}, fmt.Errorf("cross-validation: %w", err)
	}

	report.Intervals, err = BootstrapCIs(report.CrossValidation, cfg.Bootstrap)
	if err != nil {
		return Report{}, fmt.Errorf("bootstrap: %w", err)
	}

	report.Elapsed = time.Since(start)

	logger.Info("evaluation finished",
		zap.Stringer("auc_mean", report.CrossValidation.Summary[AUC].Mean),
		zap.Stringer("auc_lower", report.Intervals[AUC].Lower),
		zap.Stringer("auc_upper", report.Intervals[AUC].Upper),
		zap.Duration("elapsed", report.Elapsed),
	)

	return report, nil
}
