// Package store journals studies to SQLite: every trial as it finishes, then
// the cross-validation folds and confidence intervals of the final report.
// Undefined scores and non-finite objective values are stored as NULL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/thalesfsp/svmstudy"
)

//////
// Schema.
//////

const schema = `
CREATE TABLE IF NOT EXISTS studies (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	report_id   TEXT,
	best_trial  INTEGER,
	best_value  REAL,
	best_params TEXT
);

CREATE TABLE IF NOT EXISTS trials (
	study_id    TEXT NOT NULL,
	number      INTEGER NOT NULL,
	state       TEXT NOT NULL,
	value       REAL,
	params      TEXT NOT NULL,
	error       TEXT,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (study_id, number),
	FOREIGN KEY (study_id) REFERENCES studies(id)
);

CREATE TABLE IF NOT EXISTS folds (
	study_id        TEXT NOT NULL,
	fold            INTEGER NOT NULL,
	train_size      INTEGER NOT NULL,
	validation_size INTEGER NOT NULL,
	degenerate      INTEGER NOT NULL,
	accuracy        REAL,
	auc             REAL,
	precision       REAL,
	recall          REAL,
	f1              REAL,
	PRIMARY KEY (study_id, fold),
	FOREIGN KEY (study_id) REFERENCES studies(id)
);

CREATE TABLE IF NOT EXISTS intervals (
	study_id   TEXT NOT NULL,
	metric     TEXT NOT NULL,
	mean       REAL,
	std_dev    REAL,
	lower      REAL,
	upper      REAL,
	confidence REAL NOT NULL,
	resamples  INTEGER NOT NULL,
	n          INTEGER NOT NULL,
	PRIMARY KEY (study_id, metric),
	FOREIGN KEY (study_id) REFERENCES studies(id)
);
`

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

//////
// Rows.
//////

// Study is a row of the studies table, with its trial count.
type Study struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	CreatedAt  string          `db:"created_at"`
	ReportID   sql.NullString  `db:"report_id"`
	BestTrial  sql.NullInt64   `db:"best_trial"`
	BestValue  sql.NullFloat64 `db:"best_value"`
	BestParams sql.NullString  `db:"best_params"`
	Trials     int             `db:"trials"`
}

// Trial is a row of the trials table.
type Trial struct {
	StudyID    string          `db:"study_id"`
	Number     int             `db:"number"`
	State      string          `db:"state"`
	Value      sql.NullFloat64 `db:"value"`
	Params     string          `db:"params"`
	Error      sql.NullString  `db:"error"`
	DurationMS int64           `db:"duration_ms"`
}

// Fold is a row of the folds table.
type Fold struct {
	StudyID        string          `db:"study_id"`
	Fold           int             `db:"fold"`
	TrainSize      int             `db:"train_size"`
	ValidationSize int             `db:"validation_size"`
	Degenerate     bool            `db:"degenerate"`
	Accuracy       sql.NullFloat64 `db:"accuracy"`
	AUC            sql.NullFloat64 `db:"auc"`
	Precision      sql.NullFloat64 `db:"precision"`
	Recall         sql.NullFloat64 `db:"recall"`
	F1             sql.NullFloat64 `db:"f1"`
}

// Interval is a row of the intervals table.
type Interval struct {
	StudyID    string          `db:"study_id"`
	Metric     string          `db:"metric"`
	Mean       sql.NullFloat64 `db:"mean"`
	StdDev     sql.NullFloat64 `db:"std_dev"`
	Lower      sql.NullFloat64 `db:"lower"`
	Upper      sql.NullFloat64 `db:"upper"`
	Confidence float64         `db:"confidence"`
	Resamples  int             `db:"resamples"`
	N          int             `db:"n"`
}

//////
// Store.
//////

// Store is the study journal.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// foreign_keys is per connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()

			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateStudy inserts an empty study and returns its id.
func (s *Store) CreateStudy(ctx context.Context, name string) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO studies (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("insert study: %w", err)
	}

	return id, nil
}

// SaveTrial journals one finalized trial.
func (s *Store) SaveTrial(ctx context.Context, studyID string, rec svmstudy.TrialRecord) error {
	row, err := trialRow(studyID, rec)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO trials (study_id, number, state, value, params, error, duration_ms)
		VALUES (:study_id, :number, :state, :value, :params, :error, :duration_ms)
	`, row)
	if err != nil {
		return fmt.Errorf("insert trial %d: %w", rec.Number, err)
	}

	return nil
}

// SaveReport stores the best trial, the folds and the intervals of report in
// one transaction. Trials are expected to be journaled already.
func (s *Store) SaveReport(ctx context.Context, studyID string, report svmstudy.Report) error {
	bestParams, err := json.Marshal(report.Best.Params)
	if err != nil {
		return fmt.Errorf("marshal best params: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE studies SET report_id = ?, best_trial = ?, best_value = ?, best_params = ? WHERE id = ?`,
		report.ID, report.Best.Number, finite(report.Best.Value), string(bestParams), studyID,
	)
	if err != nil {
		return fmt.Errorf("update study: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update study: %w", sql.ErrNoRows)
	}

	for _, f := range report.CrossValidation.Folds {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO folds (study_id, fold, train_size, validation_size, degenerate, accuracy, auc, precision, recall, f1)
			VALUES (:study_id, :fold, :train_size, :validation_size, :degenerate, :accuracy, :auc, :precision, :recall, :f1)
		`, foldRow(studyID, f))
		if err != nil {
			return fmt.Errorf("insert fold %d: %w", f.Index, err)
		}
	}

	for _, m := range svmstudy.Metrics {
		summary := report.CrossValidation.Summary[m]
		ci := report.Intervals[m]

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO intervals (study_id, metric, mean, std_dev, lower, upper, confidence, resamples, n)
			VALUES (:study_id, :metric, :mean, :std_dev, :lower, :upper, :confidence, :resamples, :n)
		`, Interval{
			StudyID:    studyID,
			Metric:     m.String(),
			Mean:       nullable(summary.Mean),
			StdDev:     nullable(summary.StdDev),
			Lower:      nullable(ci.Lower),
			Upper:      nullable(ci.Upper),
			Confidence: ci.Confidence,
			Resamples:  ci.Resamples,
			N:          ci.N,
		})
		if err != nil {
			return fmt.Errorf("insert interval %s: %w", m, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Studies lists every study, oldest first.
func (s *Store) Studies(ctx context.Context) ([]Study, error) {
	var out []Study

	err := s.db.SelectContext(ctx, &out, `
		SELECT s.id, s.name, s.created_at, s.report_id, s.best_trial, s.best_value, s.best_params,
		       (SELECT COUNT(*) FROM trials t WHERE t.study_id = s.id) AS trials
		FROM studies s
		ORDER BY s.created_at, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("select studies: %w", err)
	}

	return out, nil
}

// Trials lists the trials of a study in trial order.
func (s *Store) Trials(ctx context.Context, studyID string) ([]Trial, error) {
	var out []Trial

	err := s.db.SelectContext(ctx, &out, `
		SELECT study_id, number, state, value, params, error, duration_ms
		FROM trials WHERE study_id = ? ORDER BY number
	`, studyID)
	if err != nil {
		return nil, fmt.Errorf("select trials: %w", err)
	}

	return out, nil
}

// Folds lists the cross-validation folds of a study in fold order.
func (s *Store) Folds(ctx context.Context, studyID string) ([]Fold, error) {
	var out []Fold

	err := s.db.SelectContext(ctx, &out, `
		SELECT study_id, fold, train_size, validation_size, degenerate, accuracy, auc, precision, recall, f1
		FROM folds WHERE study_id = ? ORDER BY fold
	`, studyID)
	if err != nil {
		return nil, fmt.Errorf("select folds: %w", err)
	}

	return out, nil
}

// Intervals lists the metric intervals of a study.
func (s *Store) Intervals(ctx context.Context, studyID string) ([]Interval, error) {
	var out []Interval

	err := s.db.SelectContext(ctx, &out, `
		SELECT study_id, metric, mean, std_dev, lower, upper, confidence, resamples, n
		FROM intervals WHERE study_id = ? ORDER BY metric
	`, studyID)
	if err != nil {
		return nil, fmt.Errorf("select intervals: %w", err)
	}

	return out, nil
}

//////
// Conversions.
//////

func trialRow(studyID string, rec svmstudy.TrialRecord) (Trial, error) {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return Trial{}, fmt.Errorf("marshal params of trial %d: %w", rec.Number, err)
	}

	row := Trial{
		StudyID:    studyID,
		Number:     rec.Number,
		State:      rec.State.String(),
		Value:      finite(rec.Value),
		Params:     string(params),
		DurationMS: rec.Duration.Milliseconds(),
	}

	if rec.Err != nil {
		row.Error = sql.NullString{String: rec.Err.Error(), Valid: true}
	}

	return row, nil
}

func foldRow(studyID string, f svmstudy.FoldResult) Fold {
	return Fold{
		StudyID:        studyID,
		Fold:           f.Index,
		TrainSize:      f.TrainSize,
		ValidationSize: f.ValidationSize,
		Degenerate:     f.Degenerate,
		Accuracy:       nullable(f.Scores[svmstudy.Accuracy]),
		AUC:            nullable(f.Scores[svmstudy.AUC]),
		Precision:      nullable(f.Scores[svmstudy.Precision]),
		Recall:         nullable(f.Scores[svmstudy.Recall]),
		F1:             nullable(f.Scores[svmstudy.F1]),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullable maps an undefined score to NULL.
func nullable(s svmstudy.Score) sql.NullFloat64 {
	v, ok := s.Value()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

// finite maps NaN and infinities to NULL.
func finite(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}
