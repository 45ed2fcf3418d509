package svmstudy

import (
	"context"
	"fmt"
	"runtime"

	"github.com/montanaflynn/stats"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/thalesfsp/svmstudy/dataset"
	"github.com/thalesfsp/svmstudy/svm"
)

// CVConfig configures CrossValidate.
type CVConfig struct {
	// Folds is the number of folds k, at least 2 and at most the row count.
	Folds int

	// Seed fixes the shuffle of the fold assignment.
	Seed uint64

	// Factory builds one classifier per fold. Nil means DefaultFactory.
	Factory ClassifierFactory

	// Workers bounds the folds trained concurrently. Results do not depend
	// on it. Values below 1 mean 1.
	Workers int

	// Logger receives fold events. Nil means zap.NewNop().
	Logger *zap.Logger
}

// DefaultCVConfig returns 10 folds shuffled with seed 42, one worker per CPU.
func DefaultCVConfig() CVConfig {
	return CVConfig{
		Folds:   10,
		Seed:    42,
		Workers: runtime.NumCPU(),
	}
}

// FoldResult holds the metrics of one fold. It is never modified after
// CrossValidate returns it.
type FoldResult struct {
	// Index is the 0-based fold number.
	Index int

	// TrainSize and ValidationSize are the partition row counts.
	TrainSize      int
	ValidationSize int

	// Degenerate is set when the validation partition has a single class;
	// its AUC is then Undefined.
	Degenerate bool

	// Scores holds the five metrics.
	Scores MetricScores
}

// Summary aggregates one metric over the folds, ignoring undefined entries.
type Summary struct {
	// Mean and StdDev (population, ddof 0) of the defined entries. Both are
	// Undefined when no entry is defined.
	Mean   Score
	StdDev Score

	// N is the number of defined entries.
	N int
}

// CVResult is the output of CrossValidate.
type CVResult struct {
	// Params is the evaluated configuration.
	Params svm.Params

	// Folds is ordered by fold index.
	Folds []FoldResult

	// Summary is indexed by Metric.
	Summary [NumMetrics]Summary
}

// Series returns the per-fold sequence of metric m, in fold order.
func (r CVResult) Series(m Metric) []Score {
	out := make([]Score, len(r.Folds))
	for i, f := range r.Folds {
		out[i] = f.Scores[m]
	}

	return out
}

// KFold shuffles the row indices 0..n-1 with seed and splits them
// contiguously into k disjoint groups. The first n%k groups hold one row
// more than the others, so every group has floor(n/k) or ceil(n/k) rows.
func KFold(n, k int, seed uint64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: folds must be at least 2, got %d", ErrInvalidConfig, k)
	}

	if k > n {
		return nil, fmt.Errorf("%w: cannot split %d rows into %d folds", ErrInvalidConfig, n, k)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	rng := newRand(seed)
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	folds := make([][]int, k)
	start := 0

	for i := range folds {
		size := n / k
		if i < n%k {
			size++
		}

		folds[i] = indices[start : start+size : start+size]
		start += size
	}

	return folds, nil
}

// CrossValidate runs k-fold cross-validation of params over data.
//
// For every fold a fresh classifier is fitted on the other folds and scored
// on the fold. A fold whose validation rows hold a single class gets an
// Undefined AUC; its other metrics are still computed. Any build, fit or
// predict failure aborts the run with an error naming the fold.
func CrossValidate(ctx context.Context, data dataset.Dataset, params svm.Params, cfg CVConfig) (CVResult, error) {
	folds, err := KFold(data.Len(), cfg.Folds, cfg.Seed)
	if err != nil {
		return CVResult{}, err
	}

	factory := cfg.Factory
	if factory == nil {
		factory = DefaultFactory
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]FoldResult, len(folds))

	p := pool.New().
		WithMaxGoroutines(max(cfg.Workers, 1)).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i := range folds {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := evaluateFold(factory, params, data, folds, i)
			if err != nil {
				return fmt.Errorf("fold %d/%d: %w", i+1, len(folds), err)
			}

			if res.Degenerate {
				logger.Warn("fold validation set contains only one class; AUC undefined",
					zap.Int("fold", i+1),
					zap.Int("rows", res.ValidationSize),
				)
			}

			logger.Debug("fold finished",
				zap.Int("fold", i+1),
				zap.Stringer("accuracy", res.Scores[Accuracy]),
				zap.Stringer("auc", res.Scores[AUC]),
			)

			results[i] = res

			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return CVResult{}, err
	}

	out := CVResult{Params: params, Folds: results}
	for _, m := range Metrics {
		out.Summary[m] = Summarize(out.Series(m))
	}

	return out, nil
}

// evaluateFold trains on every group except folds[i] and scores folds[i].
func evaluateFold(factory ClassifierFactory, params svm.Params, data dataset.Dataset, folds [][]int, i int) (FoldResult, error) {
	trainIdx := make([]int, 0, data.Len()-len(folds[i]))
	for j, f := range folds {
		if j != i {
			trainIdx = append(trainIdx, f...)
		}
	}

	train := data.Subset(trainIdx)
	val := data.Subset(folds[i])

	predicted, probs, err := trainAndPredict(factory, params, train, val, true)
	if err != nil {
		return FoldResult{}, err
	}

	return FoldResult{
		Index:          i,
		TrainSize:      train.Len(),
		ValidationSize: val.Len(),
		Degenerate:     !val.HasBothClasses(),
		Scores:         ComputeScores(val.Labels, predicted, probs),
	}, nil
}

// Summarize returns the mean and population standard deviation of the
// defined entries of values.
func Summarize(values []Score) Summary {
	defined := definedValues(values)
	if len(defined) == 0 {
		return Summary{Mean: Undefined, StdDev: Undefined}
	}

	mean, err := stats.Mean(defined)
	if err != nil {
		return Summary{Mean: Undefined, StdDev: Undefined}
	}

	std, err := stats.StandardDeviationPopulation(defined)
	if err != nil {
		return Summary{Mean: Defined(mean), StdDev: Undefined, N: len(defined)}
	}

	return Summary{Mean: Defined(mean), StdDev: Defined(std), N: len(defined)}
}

// definedValues drops undefined entries.
func definedValues(values []Score) []float64 {
	out := make([]float64, 0, len(values))
	for _, s := range values {
		if v, ok := s.Value(); ok {
			out = append(out, v)
		}
	}

	return out
}
