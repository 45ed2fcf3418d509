// Package config reads the CLI configuration from SVMSTUDY_* environment
// variables. Command-line flags override it.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"go.uber.org/zap"

	"github.com/thalesfsp/svmstudy"
)

// ErrInvalid is returned for unparsable or out-of-range settings.
var ErrInvalid = errors.New("config: invalid")

// Samplers accepted by Config.Sampler.
const (
	SamplerRandom = "random"
	SamplerGP     = "gp"
)

// Config represents the complete CLI configuration.
type Config struct {
	Data   DataConfig
	Search SearchConfig
	Eval   EvalConfig
	Store  StoreConfig

	// LogLevel is a zap level name.
	LogLevel string
}

// DataConfig holds the paths of the four input tables.
type DataConfig struct {
	TrainX string
	TrainY string
	ValX   string
	ValY   string
}

// SearchConfig holds hyperparameter search settings.
type SearchConfig struct {
	Trials  int
	Seed    uint64
	Sampler string
}

// EvalConfig holds cross-validation and bootstrap settings.
type EvalConfig struct {
	Folds      int
	Seed       uint64
	Resamples  int
	Confidence float64
	Workers    int
}

// StoreConfig holds the study journal settings. An empty DBPath disables the
// journal.
type StoreConfig struct {
	DBPath    string
	StudyName string
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Trials:  200,
			Seed:    42,
			Sampler: SamplerRandom,
		},
		Eval: EvalConfig{
			Folds:      10,
			Seed:       42,
			Resamples:  10000,
			Confidence: 0.95,
			Workers:    runtime.NumCPU(),
		},
		Store: StoreConfig{
			StudyName: "svm",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from environment variables over Default and
// validates it.
func Load() (Config, error) {
	c := Default()

	c.Data = DataConfig{
		TrainX: getEnvOrDefault("SVMSTUDY_TRAIN_X", ""),
		TrainY: getEnvOrDefault("SVMSTUDY_TRAIN_Y", ""),
		ValX:   getEnvOrDefault("SVMSTUDY_VAL_X", ""),
		ValY:   getEnvOrDefault("SVMSTUDY_VAL_Y", ""),
	}

	c.Store.DBPath = getEnvOrDefault("SVMSTUDY_DB", c.Store.DBPath)
	c.Store.StudyName = getEnvOrDefault("SVMSTUDY_STUDY_NAME", c.Store.StudyName)
	c.Search.Sampler = getEnvOrDefault("SVMSTUDY_SAMPLER", c.Search.Sampler)
	c.LogLevel = getEnvOrDefault("SVMSTUDY_LOG_LEVEL", c.LogLevel)

	var err error

	if c.Search.Trials, err = getEnvInt("SVMSTUDY_TRIALS", c.Search.Trials); err != nil {
		return Config{}, err
	}

	if c.Search.Seed, err = getEnvUint("SVMSTUDY_SEARCH_SEED", c.Search.Seed); err != nil {
		return Config{}, err
	}

	if c.Eval.Folds, err = getEnvInt("SVMSTUDY_FOLDS", c.Eval.Folds); err != nil {
		return Config{}, err
	}

	if c.Eval.Seed, err = getEnvUint("SVMSTUDY_SEED", c.Eval.Seed); err != nil {
		return Config{}, err
	}

	if c.Eval.Resamples, err = getEnvInt("SVMSTUDY_RESAMPLES", c.Eval.Resamples); err != nil {
		return Config{}, err
	}

	if c.Eval.Confidence, err = getEnvFloat("SVMSTUDY_CONFIDENCE", c.Eval.Confidence); err != nil {
		return Config{}, err
	}

	if c.Eval.Workers, err = getEnvInt("SVMSTUDY_WORKERS", c.Eval.Workers); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks ranges and names. Input paths are checked by the command
// that needs them.
func (c Config) Validate() error {
	switch {
	case c.Search.Trials < 1:
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalid, c.Search.Trials)
	case c.Search.Sampler != SamplerRandom && c.Search.Sampler != SamplerGP:
		return fmt.Errorf("%w: unknown sampler %q", ErrInvalid, c.Search.Sampler)
	case c.Eval.Folds < 2:
		return fmt.Errorf("%w: folds must be at least 2, got %d", ErrInvalid, c.Eval.Folds)
	case c.Eval.Resamples < 1:
		return fmt.Errorf("%w: resamples must be positive, got %d", ErrInvalid, c.Eval.Resamples)
	case !(c.Eval.Confidence > 0 && c.Eval.Confidence < 1):
		return fmt.Errorf("%w: confidence must be in (0, 1), got %v", ErrInvalid, c.Eval.Confidence)
	}

	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

// Evaluation maps the configuration onto the pipeline configuration.
func (c Config) Evaluation(logger *zap.Logger) svmstudy.EvaluationConfig {
	cfg := svmstudy.DefaultEvaluationConfig()
	cfg.Logger = logger

	cfg.Study.Trials = c.Search.Trials
	cfg.Study.Seed = c.Search.Seed

	if c.Search.Sampler == SamplerGP {
		cfg.Study.Sampler = svmstudy.NewGPSampler(svmstudy.DefaultGPSamplerConfig(), c.Search.Seed)
	}

	cfg.CV.Folds = c.Eval.Folds
	cfg.CV.Seed = c.Eval.Seed
	cfg.CV.Workers = c.Eval.Workers

	cfg.Bootstrap.Seed = c.Eval.Seed
	cfg.Bootstrap.Resamples = c.Eval.Resamples
	cfg.Bootstrap.Confidence = c.Eval.Confidence
	cfg.Bootstrap.Workers = c.Eval.Workers

	return cfg
}

// Helper functions for environment variable parsing.

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, value)
	}

	return v, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalid, key, value)
	}

	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, value)
	}

	return v, nil
}
