// Package svmstudy tunes and evaluates binary SVM-style classifiers. It
// searches a conditional hyperparameter space, prunes unpromising trials,
// cross-validates the winner and reports bootstrap confidence intervals for
// every metric.
//
// # Features
//
//   - Conditional search space: gamma only exists for non-linear kernels and
//     degree only for the polynomial kernel
//   - Samplers: seeded random search, or a Gaussian-process surrogate scored
//     by UCB, Probability of Improvement, Expected Improvement or Thompson
//     Sampling
//   - Median pruning: trials whose intermediate value is worse than the
//     median of finished trials at the same step stop early
//   - Robust objective: single-class validation sets and classifier failures
//     yield +Inf instead of aborting the search
//   - Cross-validation: shuffled k-fold with undefined AUC on single-class
//     folds and NaN-free aggregation
//   - Bootstrap: reproducible percentile intervals, parallel and independent
//     of the worker count
//   - Progress Monitoring: updates after every trial via a channel
//
// # Pipeline
//
// Evaluate chains the stages:
//
//	train, val, err := dataset.LoadSplit("X_train.csv", "y_train.csv", "X_val.csv", "y_val.csv")
//	if err != nil {
//	    return err
//	}
//
//	cfg := svmstudy.DefaultEvaluationConfig()
//	cfg.Logger = logger
//
//	report, err := svmstudy.Evaluate(ctx, train, val, cfg)
//	if errors.Is(err, svmstudy.ErrSearchExhausted) {
//	    // every trial was undefined, failed or pruned
//	}
//
// # Objective
//
// The search minimizes 1 - AUC on the validation partition. Lower is better;
// +Inf marks an undefined or failed trial and is never selected as best. Ties
// keep the earliest trial.
//
// # Samplers
//
// 1. RandomSampler:
//
//   - Draws every active parameter independently
//
//   - Default choice, matches the reference search
//
//     config := DefaultConfig()
//     config.Sampler = NewRandomSampler(config.Seed)
//
// 2. GPSampler:
//
//   - Random during StartupTrials, then picks the best of Candidates random
//     configurations under the acquisition function
//
//   - Acquisition scores are losses: lower is more promising
//
//     config := DefaultConfig()
//     config.Sampler = NewGPSampler(DefaultGPSamplerConfig(), config.Seed)
//
// # Undefined metrics
//
// Metrics that cannot be computed are Score values with no value, rendered as
// "N/A" and encoded as null. They are skipped by Summarize and BootstrapCI.
//
// # Thread Safety
//
// A Study runs its trials sequentially. CrossValidate and BootstrapCI fan out
// over goroutines; their results depend only on their seeds.
package svmstudy
