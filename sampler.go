package svmstudy

import "math/rand/v2"

// Sampler draws the configuration of the next trial.
type Sampler interface {
	// Sample returns one configuration of space. state holds the finalized
	// trials of the study.
	Sample(state *SearchState, space SearchSpace) (Params, error)
}

// phaser is implemented by samplers that report a progress phase.
type phaser interface {
	Phase(state *SearchState) string
}

// newRand returns a PCG generator. The second word is derived from the first
// so a single seed fully determines the stream.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

//////
// Random sampler.
//////

// RandomSampler draws every parameter independently from its domain and
// ignores the trial history.
type RandomSampler struct {
	rng *rand.Rand
}

// NewRandomSampler returns a sampler whose draws are fully determined by seed.
func NewRandomSampler(seed uint64) *RandomSampler {
	return &RandomSampler{rng: newRand(seed)}
}

// Sample implements Sampler.
func (s *RandomSampler) Sample(_ *SearchState, space SearchSpace) (Params, error) {
	return space.Sample(s.rng)
}

// Phase implements phaser.
func (s *RandomSampler) Phase(*SearchState) string {
	return "Random"
}

//////
// Gaussian-process sampler.
//////

// GPSampler samples at random until StartupTrials trials finished with a
// finite value. Afterwards it draws Candidates random configurations, predicts
// their objective with a Gaussian process fitted to the finished trials, and
// returns the one with the lowest acquisition score.
//
// How it works:
//  1. Encode every finished trial's parameters into [0, 1]^d
//  2. Fit the surrogate to (encoding, objective value) pairs
//  3. Score random candidates with the acquisition function
//  4. Return the most promising candidate
//
// Candidates are drawn from the search space itself, so conditional
// parameters keep their activation rules.
type GPSampler struct {
	config GPSamplerConfig
	rng    *rand.Rand
}

// NewGPSampler returns a sampler whose draws are fully determined by seed
// and the trial history.
func NewGPSampler(config GPSamplerConfig, seed uint64) *GPSampler {
	if config.AcquisitionFunc == nil {
		config.AcquisitionFunc = ExpectedImprovement
	}

	if config.Candidates < 1 {
		config.Candidates = 1
	}

	return &GPSampler{config: config, rng: newRand(seed)}
}

// Phase implements phaser.
func (s *GPSampler) Phase(state *SearchState) string {
	if len(finiteTrials(state)) < s.config.StartupTrials {
		return "Startup"
	}

	return "Search"
}

// Sample implements Sampler.
func (s *GPSampler) Sample(state *SearchState, space SearchSpace) (Params, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}

	observed := finiteTrials(state)
	if len(observed) < s.config.StartupTrials || len(observed) == 0 {
		return space.sample(s.rng), nil
	}

	gp := newGaussianProcess(s.config.Sigma)
	for _, t := range observed {
		gp.Update(space.Encode(t.Params), t.Value)
	}

	acqParams := s.config.AcqParams
	acqParams.BestSoFar = state.BestValue()

	if acqParams.RandomState == nil {
		acqParams.RandomState = s.rng
	}

	var (
		next Params
		best float64
	)

	for j := 0; j < s.config.Candidates; j++ {
		candidate := space.sample(s.rng)

		mean, variance := gp.Predict(space.Encode(candidate))
		score := s.config.AcquisitionFunc(mean, variance, acqParams)

		if next == nil || score < best {
			next, best = candidate, score
		}
	}

	return next, nil
}

func finiteTrials(state *SearchState) []TrialRecord {
	if state == nil {
		return nil
	}

	var out []TrialRecord
	for _, t := range state.Trials() {
		if t.Finite() {
			out = append(out, t)
		}
	}

	return out
}
