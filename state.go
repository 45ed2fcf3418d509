package svmstudy

import (
	"math"
	"time"
)

// TrialState is the final state of a trial.
type TrialState int

const (
	// TrialComplete trials returned an objective value, possibly +Inf.
	TrialComplete TrialState = iota

	// TrialPruned trials stopped early on the pruner's advice.
	TrialPruned

	// TrialFailed trials returned an error other than ErrTrialPruned.
	TrialFailed
)

func (s TrialState) String() string {
	switch s {
	case TrialComplete:
		return "complete"
	case TrialPruned:
		return "pruned"
	case TrialFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TrialRecord is a finalized trial. Records are values; the study never
// changes one after appending it to the SearchState.
type TrialRecord struct {
	// Number is the 0-based position of the trial in the study.
	Number int

	// Params is the sampled configuration.
	Params Params

	// State is the final state.
	State TrialState

	// Value is the objective value. It is +Inf when the objective was
	// undefined and for failed trials. For pruned trials it is the last
	// reported intermediate value.
	Value float64

	// Intermediate holds the values reported per step.
	Intermediate map[int]float64

	// Err is the objective error of a failed trial.
	Err error

	// Duration is the wall time spent in the objective.
	Duration time.Duration
}

// Finite reports whether the trial is eligible as best: complete with a
// finite value.
func (r TrialRecord) Finite() bool {
	return r.State == TrialComplete && isFinite(r.Value)
}

// SearchState is the explicit history of a study: the ordered trial records
// and the index of the best one. Samplers and pruners read it; only the study
// appends to it.
type SearchState struct {
	trials []TrialRecord
	best   int
}

// NewSearchState returns an empty history.
func NewSearchState() *SearchState {
	return &SearchState{best: -1}
}

// Trials returns the finalized records in trial order. The slice must not be
// modified.
func (s *SearchState) Trials() []TrialRecord {
	return s.trials
}

// Len returns the number of finalized trials.
func (s *SearchState) Len() int {
	return len(s.trials)
}

// Best returns the first trial holding the minimum finite value among
// complete trials.
func (s *SearchState) Best() (TrialRecord, bool) {
	if s.best < 0 {
		return TrialRecord{}, false
	}

	return s.trials[s.best], true
}

// BestValue returns the best finite value, +Inf if there is none.
func (s *SearchState) BestValue() float64 {
	if best, ok := s.Best(); ok {
		return best.Value
	}

	return math.Inf(1)
}

// Completed returns the complete trials in trial order.
func (s *SearchState) Completed() []TrialRecord {
	out := make([]TrialRecord, 0, len(s.trials))
	for _, t := range s.trials {
		if t.State == TrialComplete {
			out = append(out, t)
		}
	}

	return out
}

// Count returns the number of trials in the given state.
func (s *SearchState) Count(state TrialState) int {
	n := 0
	for _, t := range s.trials {
		if t.State == state {
			n++
		}
	}

	return n
}

// append adds a record and moves the best pointer on a strict improvement,
// so ties keep the earliest trial.
func (s *SearchState) append(r TrialRecord) {
	s.trials = append(s.trials, r)

	if r.Finite() && (s.best < 0 || r.Value < s.trials[s.best].Value) {
		s.best = len(s.trials) - 1
	}
}
