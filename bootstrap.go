package svmstudy

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/sourcegraph/conc/pool"
)

// BootstrapConfig configures BootstrapCI.
type BootstrapConfig struct {
	// Confidence is the two-sided confidence level, in (0, 1).
	Confidence float64

	// Resamples is the number of bootstrap resamples, at least 1.
	Resamples int

	// Seed fixes the resamples. Resample i draws from PCG(Seed, i), so the
	// interval is identical for any number of workers.
	Seed uint64

	// Workers bounds the goroutines drawing resamples. Values below 1 mean 1.
	Workers int
}

// DefaultBootstrapConfig returns a 95% interval over 10000 resamples with
// seed 42.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Confidence: 0.95,
		Resamples:  10000,
		Seed:       42,
		Workers:    runtime.NumCPU(),
	}
}

func (c BootstrapConfig) validate() error {
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("%w: confidence must be in (0, 1), got %v", ErrInvalidConfig, c.Confidence)
	}

	if c.Resamples < 1 {
		return fmt.Errorf("%w: resamples must be positive, got %d", ErrInvalidConfig, c.Resamples)
	}

	return nil
}

// Interval is a percentile bootstrap confidence interval of a mean.
type Interval struct {
	// Lower and Upper bound the interval. Both are Undefined when the input
	// held no defined value.
	Lower Score
	Upper Score

	// Confidence and Resamples echo the configuration.
	Confidence float64
	Resamples  int

	// N is the number of defined values resampled.
	N int
}

// Contains reports whether v lies within a defined interval.
func (i Interval) Contains(v float64) bool {
	lo, okLo := i.Lower.Value()
	hi, okHi := i.Upper.Value()

	return okLo && okHi && v >= lo && v <= hi
}

// BootstrapCI estimates a confidence interval for the mean of values.
//
// Undefined entries are dropped first. Each resample draws len(valid) values
// with replacement and records their mean. The bounds are the
// (1-Confidence)/2 and (1+Confidence)/2 percentiles of the resample means,
// with linear interpolation between order statistics.
//
// With no defined value the interval is undefined and the error is nil.
// With one defined value both bounds equal it.
func BootstrapCI(values []Score, cfg BootstrapConfig) (Interval, error) {
	if err := cfg.validate(); err != nil {
		return Interval{}, err
	}

	out := Interval{
		Lower:      Undefined,
		Upper:      Undefined,
		Confidence: cfg.Confidence,
		Resamples:  cfg.Resamples,
	}

	valid := definedValues(values)
	out.N = len(valid)

	if len(valid) == 0 {
		return out, nil
	}

	means := resampleMeans(valid, cfg)
	slices.Sort(means)

	out.Lower = Defined(sortedPercentile(means, (1-cfg.Confidence)/2*100))
	out.Upper = Defined(sortedPercentile(means, (1+cfg.Confidence)/2*100))

	return out, nil
}

// resampleMeans returns the mean of every resample, indexed by resample.
func resampleMeans(valid []float64, cfg BootstrapConfig) []float64 {
	means := make([]float64, cfg.Resamples)

	workers := max(cfg.Workers, 1)
	chunk := (cfg.Resamples + workers - 1) / workers

	p := pool.New().WithMaxGoroutines(workers)

	for start := 0; start < cfg.Resamples; start += chunk {
		end := min(start+chunk, cfg.Resamples)

		p.Go(func() {
			src := rand.NewPCG(0, 0)
			rng := rand.New(src)
			buf := make([]float64, len(valid))

			for i := start; i < end; i++ {
				src.Seed(cfg.Seed, uint64(i))

				for j := range buf {
					buf[j] = valid[rng.IntN(len(valid))]
				}

				// Mean only fails on empty input.
				means[i], _ = stats.Mean(buf)
			}
		})
	}

	p.Wait()

	return means
}

// BootstrapCIs computes one interval per metric of a cross-validation result.
// Metric m resamples with seed Seed+m.
func BootstrapCIs(result CVResult, cfg BootstrapConfig) ([NumMetrics]Interval, error) {
	var out [NumMetrics]Interval

	for _, m := range Metrics {
		c := cfg
		c.Seed = cfg.Seed + uint64(m)

		ci, err := BootstrapCI(result.Series(m), c)
		if err != nil {
			return out, fmt.Errorf("%s: %w", m, err)
		}

		out[m] = ci
	}

	return out, nil
}
