package svmstudy

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// ProgressUpdate represents the state of a study after one trial finished.
type ProgressUpdate struct {
	// Phase is reported by the sampler: "Random" for RandomSampler,
	// "Startup" or "Search" for GPSampler.
	Phase string

	// CurrentTrial is the 1-based number of the trial that just finished.
	CurrentTrial int

	// TotalTrials is the number of trials the study runs.
	TotalTrials int

	// State is the final state of the current trial.
	State TrialState

	// CurrentParams holds the configuration of the current trial.
	CurrentParams Params

	// CurrentValue is the objective value of the current trial.
	CurrentValue float64

	// BestParams holds the best configuration found so far, nil if none.
	BestParams Params

	// BestValue holds the best objective value so far, +Inf if none.
	BestValue float64
}

// ParameterRange defines the inclusive bounds of a numeric hyperparameter.
//
// Type Parameter:
//   - T: The numeric type of the bounds (int or float64)
//
// Usage:
//
//	// Cost parameter searched between 1e-3 and 1e2
//	costRange := ParameterRange[float64]{Min: 1e-3, Max: 1e2}
//
//	// Polynomial degree searched between 2 and 5
//	degreeRange := ParameterRange[int]{Min: 2, Max: 5}
type ParameterRange[T constraints.Integer | constraints.Float] struct {
	// Min is the smallest allowed value (inclusive).
	Min T

	// Max is the largest allowed value (inclusive).
	Max T
}

// Contains reports whether v lies within [Min, Max].
func (r ParameterRange[T]) Contains(v T) bool {
	return v >= r.Min && v <= r.Max
}

// validate checks Min <= Max.
func (r ParameterRange[T]) validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: range min %v exceeds max %v", ErrConfiguration, r.Min, r.Max)
	}

	return nil
}

// AcquisitionFunc scores a candidate from the surrogate's predicted objective
// mean and variance. Lower scores are more promising.
//
// Built-in acquisition functions:
// - UCB: lower confidence bound on the loss
// - ProbabilityOfImprovement: negated probability of beating the best loss
// - ExpectedImprovement: negated expected improvement over the best loss
// - ThompsonSampling: one draw from the predictive distribution
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds the knobs read by the acquisition functions.
type AcquisitionParams struct {
	// Beta weights the uncertainty term of UCB. Higher values explore more.
	Beta float64

	// Xi is the minimum improvement PI and EI ask for.
	Xi float64

	// BestSoFar is the lowest finite objective value observed. GPSampler
	// refreshes it before scoring candidates.
	BestSoFar float64

	// RandomState is the generator used by ThompsonSampling. GPSampler fills
	// it from its own generator when nil.
	RandomState *rand.Rand
}

// GPSamplerConfig configures GPSampler.
//
// Recommended settings:
//   - StartupTrials: 10-20 (random trials before the surrogate is trusted)
//   - Candidates: 50-500 (more = better search but slower sampling)
type GPSamplerConfig struct {
	// StartupTrials is the number of finished trials with finite values
	// required before candidates are scored by the surrogate.
	StartupTrials int

	// Candidates is the number of random configurations scored per trial.
	Candidates int

	// Sigma is the kernel width of the surrogate over encoded parameters,
	// which lie in [0, 1] per dimension.
	Sigma float64

	// AcquisitionFunc picks among candidates. Defaults to ExpectedImprovement.
	AcquisitionFunc AcquisitionFunc

	// AcqParams holds the parameters for the acquisition function.
	AcqParams AcquisitionParams
}

// DefaultGPSamplerConfig returns the sampler configuration used by the CLI.
func DefaultGPSamplerConfig() GPSamplerConfig {
	return GPSamplerConfig{
		StartupTrials:   10,
		Candidates:      100,
		Sigma:           0.25,
		AcquisitionFunc: ExpectedImprovement,
		AcqParams: AcquisitionParams{
			Beta: 2.0,
			Xi:   0.01,
		},
	}
}

// Config holds the configuration of a Study.
//
// Usage example:
//
//	config := DefaultConfig()
//	config.Trials = 50
//	config.Sampler = NewGPSampler(DefaultGPSamplerConfig(), config.Seed)
//
//	study, err := NewStudy(config, SVMSearchSpace())
type Config struct {
	// Trials is the exact number of trials Optimize runs.
	Trials int

	// Seed seeds the default sampler so the search itself is reproducible.
	Seed uint64

	// Sampler draws configurations. Nil means NewRandomSampler(Seed).
	Sampler Sampler

	// Pruner decides whether running trials stop early. Nil means
	// NopPruner.
	Pruner Pruner

	// ProgressChan receives an update after every trial. Sends never block;
	// updates are dropped when the channel is full. Nil disables updates.
	ProgressChan chan<- ProgressUpdate

	// OnTrial is called synchronously with every finalized trial.
	OnTrial func(TrialRecord)

	// Logger receives structured study events. Nil means zap.NewNop().
	Logger *zap.Logger
}

// DefaultConfig returns 200 trials with a seeded random sampler and a median
// pruner that starts after 5 finished trials and 10 warm-up steps.
func DefaultConfig() Config {
	return Config{
		Trials: 200,
		Seed:   42,
		Pruner: NewMedianPruner(5, 10),
	}
}
