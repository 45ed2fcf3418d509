package svmstudy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapCIDeterministic(t *testing.T) {
	values := scores(0.81, 0.92, 0.77, 0.88, 0.95, 0.85, 0.79, 0.9, 0.86, 0.83)

	cfg := DefaultBootstrapConfig()
	cfg.Resamples = 2000

	a, err := BootstrapCI(values, cfg)
	require.NoError(t, err)

	b, err := BootstrapCI(values, cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	lo, ok := a.Lower.Value()
	require.True(t, ok)

	hi, ok := a.Upper.Value()
	require.True(t, ok)

	assert.LessOrEqual(t, lo, hi)
	assert.GreaterOrEqual(t, lo, 0.77)
	assert.LessOrEqual(t, hi, 0.95)

	// The sample mean lies inside its own interval.
	assert.True(t, a.Contains(0.856))

	assert.Equal(t, 10, a.N)
	assert.Equal(t, 2000, a.Resamples)
	assert.Equal(t, 0.95, a.Confidence)
}

func TestBootstrapCIWorkersIndependent(t *testing.T) {
	values := scores(0.1, 0.4, 0.35, 0.8, 0.65, 0.2)

	run := func(workers int) Interval {
		cfg := DefaultBootstrapConfig()
		cfg.Resamples = 999
		cfg.Workers = workers

		ci, err := BootstrapCI(values, cfg)
		require.NoError(t, err)

		return ci
	}

	want := run(1)
	for _, workers := range []int{2, 3, 8, 2000} {
		assert.Equal(t, want, run(workers), "workers=%d", workers)
	}
}

func TestBootstrapCISeed(t *testing.T) {
	values := scores(0.1, 0.4, 0.35, 0.8, 0.65, 0.2)

	cfg := DefaultBootstrapConfig()
	cfg.Resamples = 500

	a, err := BootstrapCI(values, cfg)
	require.NoError(t, err)

	cfg.Seed++

	b, err := BootstrapCI(values, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBootstrapCISingleValue(t *testing.T) {
	ci, err := BootstrapCI([]Score{Undefined, Defined(0.73), Undefined}, DefaultBootstrapConfig())
	require.NoError(t, err)

	assert.Equal(t, Defined(0.73), ci.Lower)
	assert.Equal(t, Defined(0.73), ci.Upper)
	assert.Equal(t, 1, ci.N)
}

func TestBootstrapCINoDefinedValue(t *testing.T) {
	ci, err := BootstrapCI([]Score{Undefined, Undefined}, DefaultBootstrapConfig())
	require.NoError(t, err)

	assert.False(t, ci.Lower.IsDefined())
	assert.False(t, ci.Upper.IsDefined())
	assert.Equal(t, 0, ci.N)
	assert.False(t, ci.Contains(0.5))

	ci, err = BootstrapCI(nil, DefaultBootstrapConfig())
	require.NoError(t, err)
	assert.False(t, ci.Lower.IsDefined())
}

func TestBootstrapCIInvalidConfig(t *testing.T) {
	values := scores(0.5, 0.6)

	for _, cfg := range []BootstrapConfig{
		{Confidence: 0, Resamples: 10},
		{Confidence: 1, Resamples: 10},
		{Confidence: 1.5, Resamples: 10},
		{Confidence: 0.95, Resamples: 0},
	} {
		_, err := BootstrapCI(values, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestBootstrapCIs(t *testing.T) {
	result := CVResult{Folds: []FoldResult{
		{Scores: MetricScores{Defined(0.9), Defined(1), Defined(0.8), Defined(1), Defined(0.89)}},
		{Scores: MetricScores{Defined(0.8), Undefined, Defined(0.7), Defined(0.9), Defined(0.78)}},
		{Scores: MetricScores{Defined(1), Defined(0.95), Defined(1), Defined(1), Defined(1)}},
	}}

	cfg := DefaultBootstrapConfig()
	cfg.Resamples = 300

	cis, err := BootstrapCIs(result, cfg)
	require.NoError(t, err)

	for _, m := range Metrics {
		assert.True(t, cis[m].Lower.IsDefined(), m.String())
		assert.LessOrEqual(t, cis[m].Lower.Float(), cis[m].Upper.Float(), m.String())
	}

	assert.Equal(t, 2, cis[AUC].N)
	assert.Equal(t, 3, cis[Accuracy].N)

	_, err = BootstrapCIs(result, BootstrapConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
