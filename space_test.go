package svmstudy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalesfsp/svmstudy/svm"
)

func TestSVMSearchSpaceSamples(t *testing.T) {
	space := SVMSearchSpace()
	require.NoError(t, space.Validate())

	rng := newRand(42)
	kernels := map[string]int{}

	for i := 0; i < 2000; i++ {
		p, err := space.Sample(rng)
		require.NoError(t, err)

		c, ok := p.Float(ParamC)
		require.True(t, ok)
		assert.True(t, c >= 1e-3 && c <= 1e2, "C=%v", c)

		kernel, ok := p.Choice(ParamKernel)
		require.True(t, ok)
		kernels[kernel]++

		assert.Equal(t, kernel != "linear", p.Has(ParamGamma), "gamma presence for %s", kernel)
		assert.Equal(t, kernel == "poly", p.Has(ParamDegree), "degree presence for %s", kernel)

		if gamma, ok := p.Float(ParamGamma); ok {
			assert.True(t, gamma >= 1e-4 && gamma <= 1e1, "gamma=%v", gamma)
		}

		if degree, ok := p.Int(ParamDegree); ok {
			assert.True(t, degree >= 2 && degree <= 5, "degree=%v", degree)
		}

		// Every sample converts into a valid classifier configuration.
		params, err := SVMParamsFrom(p, DefaultClassifierSeed)
		require.NoError(t, err)
		assert.NoError(t, params.Validate())
		assert.True(t, params.Probability)
	}

	assert.Len(t, kernels, 4)
}

func TestSearchSpaceDeterministic(t *testing.T) {
	space := SVMSearchSpace()

	a, err := space.Sample(newRand(3))
	require.NoError(t, err)

	b, err := space.Sample(newRand(3))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSearchSpaceValidate(t *testing.T) {
	tests := []struct {
		name  string
		space SearchSpace
	}{
		{"empty", SearchSpace{}},
		{"nil domain", SearchSpace{Specs: []ParamSpec{{Name: "x"}}}},
		{"empty name", SearchSpace{Specs: []ParamSpec{{Domain: IntRange{Range: ParameterRange[int]{Min: 1, Max: 2}}}}}},
		{"duplicate", SearchSpace{Specs: []ParamSpec{
			{Name: "x", Domain: IntRange{Range: ParameterRange[int]{Min: 1, Max: 2}}},
			{Name: "x", Domain: IntRange{Range: ParameterRange[int]{Min: 1, Max: 2}}},
		}}},
		{"inverted range", SearchSpace{Specs: []ParamSpec{{Name: "x", Domain: IntRange{Range: ParameterRange[int]{Min: 3, Max: 2}}}}}},
		{"non-positive log bound", SearchSpace{Specs: []ParamSpec{{Name: "x", Domain: LogUniform{Range: ParameterRange[float64]{Min: 0, Max: 1}}}}}},
		{"no choices", SearchSpace{Specs: []ParamSpec{{Name: "x", Domain: Categorical{}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.space.Validate(), ErrConfiguration)

			_, err := tt.space.Sample(rand.New(rand.NewPCG(1, 1)))
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestSearchSpaceEncode(t *testing.T) {
	space := SVMSearchSpace()

	linear := Params{ParamC: 1e-3, ParamKernel: "linear"}
	poly := Params{ParamC: 1e2, ParamKernel: "poly", ParamGamma: 1e1, ParamDegree: 5}

	a := space.Encode(linear)
	b := space.Encode(poly)

	// C, four kernel slots, gamma, degree.
	require.Len(t, a, 7)
	require.Len(t, b, 7)

	assert.Equal(t, []float64{0, 1, 0, 0, 0, 0, 0}, a)
	assert.InDeltaSlice(t, []float64{1, 0, 0, 1, 0, 1, 1}, b, 1e-12)
}

func TestParamsHelpers(t *testing.T) {
	p := Params{ParamC: 0.5, ParamKernel: "rbf", ParamGamma: 0.25}

	assert.Equal(t, []string{"C", "gamma", "kernel"}, p.Names())
	assert.Equal(t, "C=0.5 gamma=0.25 kernel=rbf", p.Format())

	clone := p.Clone()
	clone[ParamC] = 2.0
	assert.Equal(t, 0.5, p[ParamC])

	_, ok := p.Int(ParamC)
	assert.False(t, ok)
}

func TestSVMParamsFrom(t *testing.T) {
	params, err := SVMParamsFrom(Params{ParamC: 2.0, ParamKernel: "poly", ParamGamma: 0.5, ParamDegree: 3}, 7)
	require.NoError(t, err)

	assert.Equal(t, svm.Poly, params.Kernel)
	assert.Equal(t, 2.0, params.C)
	require.NotNil(t, params.Gamma)
	assert.Equal(t, 0.5, *params.Gamma)
	require.NotNil(t, params.Degree)
	assert.Equal(t, 3, *params.Degree)
	assert.Equal(t, int64(7), params.Seed)

	invalid := []Params{
		{ParamKernel: "linear"},
		{ParamC: 1.0},
		{ParamC: 1.0, ParamKernel: "laplacian"},
		{ParamC: 1.0, ParamKernel: "rbf"},
		{ParamC: 1.0, ParamKernel: "linear", ParamGamma: 0.1},
	}

	for _, p := range invalid {
		_, err := SVMParamsFrom(p, 7)
		assert.ErrorIs(t, err, ErrConfiguration, p.Format())
	}
}
