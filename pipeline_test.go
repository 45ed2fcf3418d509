package svmstudy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// linearSpace searches C only, with the linear kernel.
func linearSpace() SearchSpace {
	return SearchSpace{Specs: []ParamSpec{
		{Name: ParamC, Domain: LogUniform{Range: ParameterRange[float64]{Min: 0.1, Max: 10}}},
		{Name: ParamKernel, Domain: Categorical{Choices: []string{"linear"}}},
	}}
}

func smallEvaluationConfig(t *testing.T) EvaluationConfig {
	cfg := DefaultEvaluationConfig()
	cfg.Study.Trials = 6
	cfg.Space = linearSpace()
	cfg.CV.Folds = 5
	cfg.Bootstrap.Resamples = 500
	cfg.Logger = zaptest.NewLogger(t)

	return cfg
}

func TestEvaluate(t *testing.T) {
	data := separableData(t, 100, 5)

	indices := make([]int, data.Len())
	for i := range indices {
		indices[i] = i
	}

	train := data.Subset(indices[:80])
	val := data.Subset(indices[80:])

	var trials int

	cfg := smallEvaluationConfig(t)
	cfg.Study.OnTrial = func(TrialRecord) { trials++ }

	report, err := Evaluate(context.Background(), train, val, cfg)
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)

	assert.Equal(t, 6, trials)
	assert.Len(t, report.History, 6)
	assert.Equal(t, 6, report.Complete+report.Pruned+report.Failed)
	assert.True(t, report.Best.Finite())
	assert.Equal(t, "linear", report.BestParams.Kernel.String())
	assert.Equal(t, int64(DefaultClassifierSeed), report.BestParams.Seed)

	cv := report.CrossValidation
	require.Len(t, cv.Folds, 5)

	var rows int
	for _, f := range cv.Folds {
		rows += f.ValidationSize
	}

	assert.Equal(t, 100, rows)
	assert.Equal(t, "1.0000", cv.Summary[AUC].Mean.String())

	for _, m := range Metrics {
		ci := report.Intervals[m]
		assert.Equal(t, 500, ci.Resamples, m.String())

		if cv.Summary[m].N > 0 {
			assert.LessOrEqual(t, ci.Lower.Float(), ci.Upper.Float(), m.String())
		}
	}

	assert.Positive(t, report.Elapsed)
}

func TestEvaluateSearchExhausted(t *testing.T) {
	cfg := smallEvaluationConfig(t)

	_, err := Evaluate(context.Background(), labeledData(t, 0, 1, 0, 1), labeledData(t, 1, 1), cfg)
	assert.ErrorIs(t, err, ErrSearchExhausted)
}

func TestEvaluateInvalidStudy(t *testing.T) {
	cfg := smallEvaluationConfig(t)
	cfg.Study.Trials = 0

	_, err := Evaluate(context.Background(), labeledData(t, 0, 1), labeledData(t, 0, 1), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEvaluateCrossValidationError(t *testing.T) {
	cfg := smallEvaluationConfig(t)
	cfg.Factory = echoFactory
	cfg.CV.Folds = 50

	_, err := Evaluate(context.Background(), labeledData(t, 0, 1, 0, 1), labeledData(t, 0, 1), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "cross-validation")
}
