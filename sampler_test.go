package svmstudy

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeHistory runs n random configurations through a synthetic loss that
// prefers large C.
func completeHistory(t *testing.T, n int) *SearchState {
	t.Helper()

	space := SVMSearchSpace()
	rng := newRand(11)
	state := NewSearchState()

	for i := 0; i < n; i++ {
		p, err := space.Sample(rng)
		require.NoError(t, err)

		c, _ := p.Float(ParamC)
		state.append(TrialRecord{Number: i, Params: p, State: TrialComplete, Value: -math.Log(c)})
	}

	return state
}

func TestRandomSamplerDeterministic(t *testing.T) {
	a := NewRandomSampler(5)
	b := NewRandomSampler(5)

	for i := 0; i < 10; i++ {
		pa, err := a.Sample(nil, SVMSearchSpace())
		require.NoError(t, err)

		pb, err := b.Sample(nil, SVMSearchSpace())
		require.NoError(t, err)

		assert.Equal(t, pa, pb)
	}

	assert.Equal(t, "Random", a.Phase(nil))
}

func TestGPSamplerPhases(t *testing.T) {
	sampler := NewGPSampler(DefaultGPSamplerConfig(), 1)

	assert.Equal(t, "Startup", sampler.Phase(NewSearchState()))
	assert.Equal(t, "Startup", sampler.Phase(completeHistory(t, 9)))
	assert.Equal(t, "Search", sampler.Phase(completeHistory(t, 10)))
}

func TestGPSamplerSearch(t *testing.T) {
	acquisitions := map[string]AcquisitionFunc{
		"UCB":  UCB,
		"PI":   ProbabilityOfImprovement,
		"EI":   ExpectedImprovement,
		"TS":   ThompsonSampling,
		"none": nil,
	}

	state := completeHistory(t, 20)

	for name, acq := range acquisitions {
		t.Run(name, func(t *testing.T) {
			config := DefaultGPSamplerConfig()
			config.AcquisitionFunc = acq

			sampler := NewGPSampler(config, 3)

			for i := 0; i < 5; i++ {
				p, err := sampler.Sample(state, SVMSearchSpace())
				require.NoError(t, err)

				_, err = SVMParamsFrom(p, DefaultClassifierSeed)
				assert.NoError(t, err)
			}
		})
	}
}

func TestGPSamplerDeterministic(t *testing.T) {
	state := completeHistory(t, 15)

	a, err := NewGPSampler(DefaultGPSamplerConfig(), 9).Sample(state, SVMSearchSpace())
	require.NoError(t, err)

	b, err := NewGPSampler(DefaultGPSamplerConfig(), 9).Sample(state, SVMSearchSpace())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGPSamplerInvalidSpace(t *testing.T) {
	_, err := NewGPSampler(DefaultGPSamplerConfig(), 1).Sample(NewSearchState(), SearchSpace{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGPSamplerDrivesStudy(t *testing.T) {
	config := testConfig(25)
	config.Sampler = NewGPSampler(DefaultGPSamplerConfig(), config.Seed)

	progress := make(chan ProgressUpdate, config.Trials)
	config.ProgressChan = progress

	study, err := NewStudy(config, SVMSearchSpace())
	require.NoError(t, err)

	best, err := study.Optimize(t.Context(), func(_ context.Context, trial *Trial) (float64, error) {
		c, _ := trial.Params().Float(ParamC)
		return -math.Log(c), nil
	})
	require.NoError(t, err)
	assert.True(t, best.Finite())

	close(progress)

	phases := map[string]int{}
	for update := range progress {
		phases[update.Phase]++
	}

	assert.Equal(t, 10, phases["Startup"])
	assert.Equal(t, 15, phases["Search"])
}

func TestGaussianProcess(t *testing.T) {
	assert.Equal(t, 1.0, newGaussianProcess(0).sigma)

	gp := newGaussianProcess(0.5)

	mean, variance := gp.Predict([]float64{0})
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 1.0, variance)

	x := []float64{0}
	gp.Update(x, 1)
	gp.Update([]float64{1}, 3)
	x[0] = 0.9
	assert.Len(t, gp.X, 2)
	assert.Equal(t, []float64{0}, gp.X[0])

	mean, variance = gp.Predict([]float64{0})
	assert.Less(t, mean, 2.0)
	assert.InDelta(t, 1e-9, variance, 1e-12)

	mean, _ = gp.Predict([]float64{0.5})
	assert.InDelta(t, 2.0, mean, 1e-9)

	assert.InDelta(t, 1.0, rbf([]float64{0.2}, []float64{0.2}, 0.5), 1e-12)
	assert.Panics(t, func() { rbf([]float64{0}, []float64{0, 1}, 0.5) })
}

func TestAcquisitionFunctions(t *testing.T) {
	params := AcquisitionParams{Beta: 2, Xi: 0, BestSoFar: 0.5}

	assert.InDelta(t, -0.15, UCB(0.25, 0.04, params), 1e-12)

	// A candidate predicted exactly at the best loss has a 50% chance.
	assert.InDelta(t, -0.5, ProbabilityOfImprovement(0.5, 0.04, params), 1e-12)
	assert.Equal(t, -1.0, ProbabilityOfImprovement(0.1, 0, params))
	assert.Equal(t, 0.0, ProbabilityOfImprovement(0.9, 0, params))

	// Lower predicted losses are more promising.
	assert.Less(t, ExpectedImprovement(0.1, 0.04, params), ExpectedImprovement(0.4, 0.04, params))
	assert.InDelta(t, -0.4, ExpectedImprovement(0.1, 0, params), 1e-12)
	assert.Equal(t, 0.0, ExpectedImprovement(0.1, 0.04, AcquisitionParams{BestSoFar: math.Inf(1)}))

	params.RandomState = newRand(1)
	assert.False(t, math.IsNaN(ThompsonSampling(0.3, 0.01, params)))
}
