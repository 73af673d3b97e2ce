// Package store persists the trained classifier and training history.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/signglove/internal/forest"
	"github.com/verte-zerg/signglove/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps fractional seconds fixed-width so stored timestamps sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for the model artifact and training runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS models (
			name TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS training_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			examples INTEGER NOT NULL,
			train_size INTEGER NOT NULL,
			test_size INTEGER NOT NULL,
			classes INTEGER NOT NULL,
			examples_per_class INTEGER NOT NULL,
			noise INTEGER NOT NULL,
			trees INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			macro_f1 REAL NOT NULL,
			report TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_training_runs_ended_at ON training_runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveModel implements Repository. The upsert replaces the previous artifact
// in a single statement.
func (s *Store) SaveModel(ctx context.Context, m *forest.Forest) error {
	var buf bytes.Buffer
	if err := forest.Encode(&buf, m); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO models (name, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		ModelName,
		buf.Bytes(),
		time.Now().UTC().Format(timeLayout),
	)
	return err
}

// LoadModel implements Repository.
func (s *Store) LoadModel(ctx context.Context) (*forest.Forest, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM models WHERE name = ?`, ModelName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, err
	}
	m, err := forest.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored model: %w", err)
	}
	return m, nil
}

// InsertRun records a completed training run.
func (s *Store) InsertRun(ctx context.Context, run model.TrainingRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_runs (id, started_at, ended_at, examples, train_size, test_size, classes, examples_per_class, noise, trees, accuracy, macro_f1, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.EndedAt.UTC().Format(timeLayout),
		run.Examples,
		run.TrainSize,
		run.TestSize,
		run.Classes,
		run.ExamplesPerClass,
		run.Noise,
		run.Trees,
		run.Accuracy,
		run.MacroF1,
		run.Report,
	)
	return err
}

// ListRuns returns training runs oldest first. A positive last keeps only the
// most recent runs.
func (s *Store) ListRuns(ctx context.Context, last int) ([]model.TrainingRun, error) {
	query := `SELECT id, started_at, ended_at, examples, train_size, test_size, classes, examples_per_class, noise, trees, accuracy, macro_f1, report
		FROM training_runs
		ORDER BY ended_at DESC`
	args := []any{}
	if last > 0 {
		query += ` LIMIT ?`
		args = append(args, last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.TrainingRun
	for rows.Next() {
		var run model.TrainingRun
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &run.Examples, &run.TrainSize, &run.TestSize,
			&run.Classes, &run.ExamplesPerClass, &run.Noise, &run.Trees, &run.Accuracy, &run.MacroF1, &run.Report); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}
