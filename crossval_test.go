package svmstudy

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thalesfsp/svmstudy/dataset"
	"github.com/thalesfsp/svmstudy/svm"
)

func TestKFoldPartition(t *testing.T) {
	for _, tc := range []struct{ n, k int }{{10, 10}, {23, 10}, {100, 10}, {7, 2}, {5, 3}} {
		folds, err := KFold(tc.n, tc.k, 42)
		require.NoError(t, err)
		require.Len(t, folds, tc.k)

		var all []int
		for i, f := range folds {
			size := tc.n / tc.k
			if i < tc.n%tc.k {
				size++
			}

			assert.Len(t, f, size, "n=%d k=%d fold %d", tc.n, tc.k, i)
			all = append(all, f...)
		}

		slices.Sort(all)

		want := make([]int, tc.n)
		for i := range want {
			want[i] = i
		}

		assert.Equal(t, want, all)
	}
}

func TestKFoldSeed(t *testing.T) {
	a, err := KFold(50, 5, 42)
	require.NoError(t, err)

	b, err := KFold(50, 5, 42)
	require.NoError(t, err)

	c, err := KFold(50, 5, 43)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestKFoldInvalid(t *testing.T) {
	_, err := KFold(10, 1, 42)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = KFold(3, 4, 42)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSummarize(t *testing.T) {
	values := scores(0.8, 0.9, 1.0, 0.7, 0.6, 0.9, 0.8, 1.0)
	values = append(values, Undefined, Undefined)

	got := Summarize(values)

	mean, ok := got.Mean.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.8375, mean, 1e-12)

	std, ok := got.StdDev.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.1316957, std, 1e-6)
	assert.Equal(t, 8, got.N)

	empty := Summarize([]Score{Undefined, Undefined})
	assert.False(t, empty.Mean.IsDefined())
	assert.False(t, empty.StdDev.IsDefined())
	assert.Equal(t, 0, empty.N)

	constant := Summarize(scores(0.5, 0.5, 0.5))
	assert.Equal(t, "0.0000", constant.StdDev.String())
}

func TestCrossValidateSeparable(t *testing.T) {
	data := separableData(t, 100, 1)

	cfg := DefaultCVConfig()

	result, err := CrossValidate(context.Background(), data, linearParams(), cfg)
	require.NoError(t, err)
	require.Len(t, result.Folds, 10)

	for i, fold := range result.Folds {
		assert.Equal(t, i, fold.Index)
		assert.Equal(t, 10, fold.ValidationSize)
		assert.Equal(t, 90, fold.TrainSize)
	}

	assert.Equal(t, "1.0000", result.Summary[Accuracy].Mean.String())
	assert.Equal(t, "1.0000", result.Summary[AUC].Mean.String())
	assert.Equal(t, 10, result.Summary[Accuracy].N)

	assert.Equal(t, linearParams(), result.Params)
}

func TestCrossValidateSingleClassFolds(t *testing.T) {
	// 20 rows, 2 of them positive: at least 8 of 10 folds hold one class.
	labels := make([]int, 20)
	labels[3], labels[11] = 1, 1

	core, logs := observer.New(zap.WarnLevel)

	cfg := DefaultCVConfig()
	cfg.Factory = echoFactory
	cfg.Logger = zap.New(core)

	result, err := CrossValidate(context.Background(), labeledData(t, labels...), linearParams(), cfg)
	require.NoError(t, err)

	var degenerate int
	for _, fold := range result.Folds {
		if fold.Degenerate {
			degenerate++
			assert.False(t, fold.Scores[AUC].IsDefined())
		} else {
			assert.Equal(t, "1.0000", fold.Scores[AUC].String())
		}

		assert.Equal(t, "1.0000", fold.Scores[Accuracy].String())
	}

	assert.GreaterOrEqual(t, degenerate, 8)
	assert.Equal(t, degenerate, logs.Len())
	assert.Equal(t, 10-degenerate, result.Summary[AUC].N)
	assert.Equal(t, 10, result.Summary[Accuracy].N)
}

func TestEvaluateFoldSingleClass(t *testing.T) {
	// Fold 0 holds only positives; the echo classifier predicts 1, 0, 1, 1.
	data, err := dataset.New(
		[][]float64{{1}, {0}, {1}, {1}, {0}, {1}},
		[]int{1, 1, 1, 1, 0, 1},
	)
	require.NoError(t, err)

	folds := [][]int{{0, 1, 2, 3}, {4, 5}}

	res, err := evaluateFold(echoFactory, linearParams(), data, folds, 0)
	require.NoError(t, err)

	assert.True(t, res.Degenerate)
	assert.Equal(t, 4, res.ValidationSize)
	assert.Equal(t, 2, res.TrainSize)
	assert.False(t, res.Scores[AUC].IsDefined())

	accuracy, ok := res.Scores[Accuracy].Value()
	require.True(t, ok)
	assert.InDelta(t, 0.75, accuracy, 1e-12)
}

func TestCrossValidateNaNProbability(t *testing.T) {
	cfg := DefaultCVConfig()
	cfg.Factory = nanFactory
	cfg.Folds = 4

	labels := make([]int, 20)
	for i := range labels {
		labels[i] = i % 2
	}

	data := labeledData(t, labels...)

	var err error
	assert.NotPanics(t, func() {
		_, err = CrossValidate(context.Background(), data, linearParams(), cfg)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fold")
	assert.Contains(t, err.Error(), "not in [0, 1]")
}

func TestCrossValidateZeroVariance(t *testing.T) {
	// A perfect classifier scores 1 on every fold.
	labels := make([]int, 40)
	for i := range labels {
		labels[i] = i % 2
	}

	cfg := DefaultCVConfig()
	cfg.Factory = echoFactory
	cfg.Folds = 4

	result, err := CrossValidate(context.Background(), labeledData(t, labels...), linearParams(), cfg)
	require.NoError(t, err)

	std, ok := result.Summary[Accuracy].StdDev.Value()
	require.True(t, ok)
	assert.Equal(t, 0.0, std)
}

func TestCrossValidateWorkersIndependent(t *testing.T) {
	data := separableData(t, 60, 2)
	params := svm.Params{C: 0.5, Kernel: svm.RBF, Gamma: svm.Float(0.2), Seed: DefaultClassifierSeed, Probability: true}

	run := func(workers int) CVResult {
		cfg := DefaultCVConfig()
		cfg.Folds = 5
		cfg.Workers = workers

		result, err := CrossValidate(context.Background(), data, params, cfg)
		require.NoError(t, err)

		return result
	}

	assert.Equal(t, run(1), run(4))
}

func TestCrossValidateFitError(t *testing.T) {
	cfg := DefaultCVConfig()
	cfg.Factory = failingFactory

	_, err := CrossValidate(context.Background(), separableData(t, 30, 3), linearParams(), cfg)
	assert.ErrorIs(t, err, errFit)
	assert.Contains(t, err.Error(), "fold")
}

func TestCrossValidateTooFewRows(t *testing.T) {
	_, err := CrossValidate(context.Background(), labeledData(t, 0, 1, 0), linearParams(), DefaultCVConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCrossValidateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CrossValidate(ctx, separableData(t, 30, 4), linearParams(), DefaultCVConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
