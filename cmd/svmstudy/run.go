package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thalesfsp/svmstudy"
	"github.com/thalesfsp/svmstudy/dataset"
	"github.com/thalesfsp/svmstudy/internal/report"
	"github.com/thalesfsp/svmstudy/internal/store"
)

func newRunCmd(a *app) *cobra.Command {
	c := a.cfg

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run search, cross-validation and bootstrap",
		Long: `Loads the train and validation tables (.csv or .xlsx, one header row),
searches SVM hyperparameters minimizing 1 - validation AUC, cross-validates
the best configuration on train and validation rows combined and prints
per-fold metrics, mean ± standard deviation and bootstrap confidence
intervals. With --db every trial and the final report are journaled.`,
		RunE: a.run,
	}

	f := runCmd.Flags()
	f.StringVar(&c.Data.TrainX, "train-x", c.Data.TrainX, "Training features table")
	f.StringVar(&c.Data.TrainY, "train-y", c.Data.TrainY, "Training labels table")
	f.StringVar(&c.Data.ValX, "val-x", c.Data.ValX, "Validation features table")
	f.StringVar(&c.Data.ValY, "val-y", c.Data.ValY, "Validation labels table")
	f.IntVar(&c.Search.Trials, "trials", c.Search.Trials, "Number of search trials")
	f.Uint64Var(&c.Search.Seed, "search-seed", c.Search.Seed, "Seed of the hyperparameter sampler")
	f.StringVar(&c.Search.Sampler, "sampler", c.Search.Sampler, "Sampler: random or gp")
	f.IntVar(&c.Eval.Folds, "folds", c.Eval.Folds, "Cross-validation folds")
	f.Uint64Var(&c.Eval.Seed, "seed", c.Eval.Seed, "Seed of the fold shuffle and the bootstrap")
	f.IntVar(&c.Eval.Resamples, "resamples", c.Eval.Resamples, "Bootstrap resamples")
	f.Float64Var(&c.Eval.Confidence, "confidence", c.Eval.Confidence, "Confidence level of the intervals")
	f.IntVar(&c.Eval.Workers, "workers", c.Eval.Workers, "Parallel folds and bootstrap workers")
	f.StringVar(&c.Store.DBPath, "db", c.Store.DBPath, "SQLite journal path (disabled when empty)")
	f.StringVar(&c.Store.StudyName, "study-name", c.Store.StudyName, "Study name in the journal")

	return runCmd
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	c := a.cfg

	if c.Data.TrainX == "" || c.Data.TrainY == "" || c.Data.ValX == "" || c.Data.ValY == "" {
		return fmt.Errorf("--train-x, --train-y, --val-x and --val-y are required")
	}

	if err := c.Validate(); err != nil {
		return err
	}

	train, val, err := dataset.LoadSplit(c.Data.TrainX, c.Data.TrainY, c.Data.ValX, c.Data.ValY)
	if err != nil {
		return err
	}

	a.logger.Info("loaded data",
		zap.Int("train_rows", train.Len()),
		zap.Int("validation_rows", val.Len()),
		zap.Int("features", train.Dim()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	evalCfg := c.Evaluation(a.logger)

	progress := make(chan svmstudy.ProgressUpdate, 16)
	evalCfg.Study.ProgressChan = progress

	done := make(chan struct{})
	go func() {
		defer close(done)

		for update := range progress {
			a.logger.Debug("progress",
				zap.String("phase", update.Phase),
				zap.Int("trial", update.CurrentTrial),
				zap.Int("total", update.TotalTrials),
				zap.Float64("best_value", update.BestValue),
			)
		}
	}()

	var (
		journal *store.Store
		studyID string
	)

	if c.Store.DBPath != "" {
		journal, studyID, err = a.openJournal(ctx)
		if err != nil {
			return err
		}
		defer journal.Close()

		evalCfg.Study.OnTrial = func(rec svmstudy.TrialRecord) {
			if err := journal.SaveTrial(ctx, studyID, rec); err != nil {
				a.logger.Warn("journal trial", zap.Int("trial", rec.Number), zap.Error(err))
			}
		}
	}

	result, err := svmstudy.Evaluate(ctx, train, val, evalCfg)

	close(progress)
	<-done

	if err != nil {
		return err
	}

	report.Render(cmd.OutOrStdout(), result)

	if journal != nil {
		if err := journal.SaveReport(ctx, studyID, result); err != nil {
			return fmt.Errorf("journal report: %w", err)
		}

		a.logger.Info("journaled study", zap.String("study", studyID), zap.String("db", c.Store.DBPath))
	}

	return nil
}

func (a *app) openJournal(ctx context.Context) (*store.Store, string, error) {
	journal, err := store.Open(a.cfg.Store.DBPath)
	if err != nil {
		return nil, "", err
	}

	studyID, err := journal.CreateStudy(ctx, a.cfg.Store.StudyName)
	if err != nil {
		journal.Close()

		return nil, "", err
	}

	return journal, studyID, nil
}
