package svmstudy

import (
	"context"
	"maps"
)

// ObjectiveFunc evaluates one trial and returns its loss (lower is better).
//
// Return +Inf when the loss is undefined. Return ErrTrialPruned after
// Trial.ShouldPrune reported true; any other error marks the trial failed
// without stopping the study.
//
// Usage example:
//
//	objective := func(ctx context.Context, trial *Trial) (float64, error) {
//	    c, _ := trial.Params().Float(ParamC)
//	    for step := 0; step < 20; step++ {
//	        loss := trainOneEpoch(c)
//	        trial.Report(step, loss)
//	        if trial.ShouldPrune() {
//	            return loss, ErrTrialPruned
//	        }
//	    }
//	    return finalLoss(), nil
//	}
type ObjectiveFunc func(ctx context.Context, trial *Trial) (float64, error)

// Trial is the running trial handed to an ObjectiveFunc.
type Trial struct {
	number int
	params Params

	state  *SearchState
	pruner Pruner

	intermediate map[int]float64
	lastStep     int
}

func newTrial(number int, params Params, state *SearchState, pruner Pruner) *Trial {
	return &Trial{
		number:       number,
		params:       params,
		state:        state,
		pruner:       pruner,
		intermediate: make(map[int]float64),
		lastStep:     -1,
	}
}

// Number returns the 0-based trial number.
func (t *Trial) Number() int {
	return t.number
}

// Params returns the sampled configuration. It must not be modified.
func (t *Trial) Params() Params {
	return t.params
}

// Report records the intermediate objective value at step. Steps are
// non-negative; a second report for the same step is ignored.
func (t *Trial) Report(step int, value float64) {
	if step < 0 {
		return
	}

	if _, ok := t.intermediate[step]; ok {
		return
	}

	t.intermediate[step] = value
	if step > t.lastStep {
		t.lastStep = step
	}
}

// ShouldPrune asks the pruner about the latest reported step.
func (t *Trial) ShouldPrune() bool {
	if t.pruner == nil || t.lastStep < 0 {
		return false
	}

	return t.pruner.Prune(t.state, t.snapshot(), t.lastStep)
}

// snapshot returns the trial as a record in the running state.
func (t *Trial) snapshot() TrialRecord {
	return TrialRecord{
		Number:       t.number,
		Params:       t.params,
		Intermediate: maps.Clone(t.intermediate),
	}
}

// lastValue returns the value reported at the latest step.
func (t *Trial) lastValue() (float64, bool) {
	if t.lastStep < 0 {
		return 0, false
	}

	return t.intermediate[t.lastStep], true
}

// finalize converts the objective outcome into a record.
func (t *Trial) finalize(value float64, err error) TrialRecord {
	rec := t.snapshot()

	switch {
	case err == nil:
		rec.State = TrialComplete
		rec.Value = value
		if !isFinite(value) {
			rec.Value = inf
		}
	case isPruned(err):
		rec.State = TrialPruned
		rec.Value = value
		if v, ok := t.lastValue(); ok {
			rec.Value = v
		}
	default:
		rec.State = TrialFailed
		rec.Value = inf
		rec.Err = err
	}

	return rec
}

// runObjective guards the study loop against panicking objectives.
func runObjective(ctx context.Context, objective ObjectiveFunc, t *Trial) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = inf, &panicError{value: r}
		}
	}()

	return objective(ctx, t)
}
