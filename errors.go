package svmstudy

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchExhausted is returned by Study.Optimize when no trial produced
	// a finite objective value, so no configuration can be recommended.
	ErrSearchExhausted = errors.New("svmstudy: search exhausted without a finite objective value")

	// ErrConfiguration signals an inconsistent search space or parameter set,
	// such as an active conditional parameter without a domain.
	ErrConfiguration = errors.New("svmstudy: configuration error")

	// ErrInvalidConfig signals out-of-range settings in a config struct.
	ErrInvalidConfig = errors.New("svmstudy: invalid config")

	// ErrTrialPruned is returned by an objective that stopped because
	// Trial.ShouldPrune reported true.
	ErrTrialPruned = errors.New("svmstudy: trial pruned")
)

// panicError wraps a value recovered from a panicking objective.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("svmstudy: objective panicked: %v", e.value)
}

func isPruned(err error) bool {
	return errors.Is(err, ErrTrialPruned)
}
