package svmstudy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Study runs a hyperparameter search over a SearchSpace.
//
// A Study is single-use and not safe for concurrent Optimize calls.
type Study struct {
	config  Config
	space   SearchSpace
	sampler Sampler
	pruner  Pruner
	logger  *zap.Logger
	state   *SearchState
}

// NewStudy validates the configuration and search space.
//
// Usage example:
//
//	study, err := NewStudy(DefaultConfig(), SVMSearchSpace())
//	if err != nil {
//	    return err
//	}
//
//	best, err := study.Optimize(ctx, NewValidationObjective(DefaultFactory, train, val, DefaultObjectiveOptions()))
//	if errors.Is(err, ErrSearchExhausted) {
//	    // no trial produced a finite loss
//	}
func NewStudy(config Config, space SearchSpace) (*Study, error) {
	if config.Trials < 1 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, config.Trials)
	}

	if err := space.Validate(); err != nil {
		return nil, err
	}

	sampler := config.Sampler
	if sampler == nil {
		sampler = NewRandomSampler(config.Seed)
	}

	pruner := config.Pruner
	if pruner == nil {
		pruner = NopPruner{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Study{
		config:  config,
		space:   space,
		sampler: sampler,
		pruner:  pruner,
		logger:  logger,
		state:   NewSearchState(),
	}, nil
}

// State returns the trial history. It is complete once Optimize returned.
func (s *Study) State() *SearchState {
	return s.state
}

// Optimize runs exactly Config.Trials trials one after the other and returns
// the best one: the earliest complete trial with the minimum finite value.
//
// How it works:
//  1. The sampler draws a configuration from the space and the history
//  2. The objective evaluates it, reporting intermediate values to the pruner
//  3. The finalized record is appended to the history
//  4. The best pointer moves on strict improvements only
//
// Objective errors and undefined values are absorbed per trial. Sampler
// errors and objective errors wrapping ErrConfiguration stop the study
// immediately. If no trial produced a finite value,
// Optimize returns ErrSearchExhausted. Cancelling ctx stops the study between
// trials and returns ctx.Err().
func (s *Study) Optimize(ctx context.Context, objective ObjectiveFunc) (TrialRecord, error) {
	if s.state.Len() > 0 {
		return TrialRecord{}, fmt.Errorf("%w: study already optimized", ErrInvalidConfig)
	}

	start := time.Now()

	for i := 0; i < s.config.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return TrialRecord{}, err
		}

		phase := s.phase()

		params, err := s.sampler.Sample(s.state, s.space)
		if err != nil {
			return TrialRecord{}, fmt.Errorf("trial %d: sample: %w", i, err)
		}

		trial := newTrial(i, params, s.state, s.pruner)

		trialStart := time.Now()
		value, err := runObjective(ctx, objective, trial)

		rec := trial.finalize(value, err)
		rec.Duration = time.Since(trialStart)

		s.state.append(rec)
		s.logTrial(rec)

		if s.config.OnTrial != nil {
			s.config.OnTrial(rec)
		}

		s.sendProgress(phase, rec)

		if rec.State == TrialFailed && errors.Is(rec.Err, ErrConfiguration) {
			return TrialRecord{}, fmt.Errorf("trial %d: %w", i, rec.Err)
		}
	}

	best, ok := s.state.Best()
	if !ok {
		s.logger.Error("study finished without a finite objective value",
			zap.Int("trials", s.state.Len()),
			zap.Int("pruned", s.state.Count(TrialPruned)),
			zap.Int("failed", s.state.Count(TrialFailed)),
		)

		return TrialRecord{}, ErrSearchExhausted
	}

	s.logger.Info("study finished",
		zap.Int("trials", s.state.Len()),
		zap.Int("pruned", s.state.Count(TrialPruned)),
		zap.Int("failed", s.state.Count(TrialFailed)),
		zap.Int("best_trial", best.Number),
		zap.Float64("best_value", best.Value),
		zap.String("best_params", best.Params.Format()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return best, nil
}

func (s *Study) phase() string {
	if p, ok := s.sampler.(phaser); ok {
		return p.Phase(s.state)
	}

	return "Search"
}

func (s *Study) logTrial(rec TrialRecord) {
	fields := []zap.Field{
		zap.Int("trial", rec.Number),
		zap.Stringer("state", rec.State),
		zap.Float64("value", rec.Value),
		zap.String("params", rec.Params.Format()),
		zap.Duration("duration", rec.Duration),
	}

	if rec.State == TrialFailed {
		s.logger.Warn("trial failed", append(fields, zap.Error(rec.Err))...)
		return
	}

	s.logger.Debug("trial finished", fields...)
}

// sendProgress never blocks; updates are dropped when the channel is full.
func (s *Study) sendProgress(phase string, rec TrialRecord) {
	if s.config.ProgressChan == nil {
		return
	}

	update := ProgressUpdate{
		Phase:         phase,
		CurrentTrial:  rec.Number + 1,
		TotalTrials:   s.config.Trials,
		State:         rec.State,
		CurrentParams: rec.Params,
		CurrentValue:  rec.Value,
		BestValue:     s.state.BestValue(),
	}

	if best, ok := s.state.Best(); ok {
		update.BestParams = best.Params
	}

	select {
	case s.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}
