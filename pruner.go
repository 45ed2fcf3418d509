package svmstudy

import "math"

// Pruner decides whether a running trial should stop early.
type Pruner interface {
	// Prune reports whether trial should stop after reporting step. state
	// holds the finalized trials; trial holds the running trial's reports.
	Prune(state *SearchState, trial TrialRecord, step int) bool
}

// NopPruner never prunes.
type NopPruner struct{}

// Prune always returns false.
func (NopPruner) Prune(*SearchState, TrialRecord, int) bool { return false }

// PercentilePruner stops a trial whose best intermediate value so far is
// worse than the given percentile of the values that complete trials
// reported at the same step.
//
// Pruning is disabled until StartupTrials trials completed, for steps below
// WarmupSteps, and for steps that are not a multiple of IntervalSteps past
// the warm-up.
type PercentilePruner struct {
	// Percentile in [0, 100]; 50 is the median rule.
	Percentile float64

	// StartupTrials is the number of complete trials required first.
	StartupTrials int

	// WarmupSteps is the first step at which pruning is considered.
	WarmupSteps int

	// IntervalSteps is the step spacing of pruning checks. Values below 1
	// mean every step.
	IntervalSteps int
}

// NewMedianPruner returns the median rule with the given startup trial count
// and warm-up steps, checking every step.
func NewMedianPruner(startupTrials, warmupSteps int) *PercentilePruner {
	return &PercentilePruner{
		Percentile:    50,
		StartupTrials: startupTrials,
		WarmupSteps:   warmupSteps,
		IntervalSteps: 1,
	}
}

// Prune implements Pruner for minimized objectives.
func (p *PercentilePruner) Prune(state *SearchState, trial TrialRecord, step int) bool {
	if step < p.WarmupSteps {
		return false
	}

	if interval := max(p.IntervalSteps, 1); (step-p.WarmupSteps)%interval != 0 {
		return false
	}

	if _, ok := trial.Intermediate[step]; !ok {
		return false
	}

	completed := state.Completed()
	if len(completed) == 0 || len(completed) < p.StartupTrials {
		return false
	}

	// Best non-NaN value of the running trial up to and including step.
	// A trial that only reported NaN is pruned.
	best, seen := math.Inf(1), false
	for s, v := range trial.Intermediate {
		if s <= step && !math.IsNaN(v) {
			best, seen = math.Min(best, v), true
		}
	}

	if !seen {
		return true
	}

	others := make([]float64, 0, len(completed))
	for _, t := range completed {
		if v, ok := t.Intermediate[step]; ok && !math.IsNaN(v) {
			others = append(others, v)
		}
	}

	if len(others) == 0 {
		return false
	}

	return best > percentile(others, p.Percentile)
}
