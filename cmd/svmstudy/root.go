package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thalesfsp/svmstudy/internal/config"
)

// app carries the state shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg, logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "svmstudy",
		Short: "Tune, cross-validate and bootstrap an SVM classifier",
		Long: `svmstudy searches SVM hyperparameters against a validation split with
median pruning, cross-validates the best configuration on all rows and
reports bootstrap confidence intervals for accuracy, AUC, precision, recall
and F1.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.cfg.LogLevel)
			if err != nil {
				return err
			}

			a.logger = logger

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCmd(a), newStudiesCmd(a), newTrialsCmd(a))

	return rootCmd
}

// newLogger builds a console logger on stderr. Debug level adds caller and
// development formatting.
func newLogger(levelName string) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if level.Level() == zapcore.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = level
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}

	return zcfg.Build()
}
