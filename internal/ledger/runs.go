package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginRun inserts run with status running.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("begin run: id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx, `INSERT INTO runs
		(id, started_at, status, first_key, last_key, key_count, workers, instrument, speech_engine)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), string(StatusRunning),
		run.FirstKey, run.LastKey, run.KeyCount, run.Workers, run.Instrument, run.SpeechEngine,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the terminal status of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, completedKeys int, errMessage string) error {
	res, err := s.exec(ctx, `UPDATE runs
		SET finished_at = ?, status = ?, completed_keys = ?, error_message = ?
		WHERE id = ?`,
		formatTime(time.Now()), string(status), completedKeys, errMessage, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// RecordArtifact appends an artifact row.
func (s *Store) RecordArtifact(ctx context.Context, a Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx, `INSERT INTO artifacts
		(run_id, key_index, key_name, stage, path, size_bytes, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.KeyIndex, a.KeyName, a.Stage, a.Path, a.SizeBytes, a.Duration.Milliseconds(), formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, status, first_key, last_key, key_count,
	completed_keys, workers, instrument, speech_engine, error_message`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var (
		run      Run
		started  sql.NullString
		finished sql.NullString
		status   string
	)
	if err := row.Scan(&run.ID, &started, &finished, &status, &run.FirstKey, &run.LastKey, &run.KeyCount,
		&run.CompletedKeys, &run.Workers, &run.Instrument, &run.SpeechEngine, &run.ErrorMessage); err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Status = Status(status)
	return run, nil
}

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Artifacts returns the artifacts of a run ordered by key then insertion.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, key_index, key_name, stage, path, size_bytes, duration_ms, created_at
		FROM artifacts WHERE run_id = ? ORDER BY key_index, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var (
			a          Artifact
			durationMS int64
			created    sql.NullString
		)
		if err := rows.Scan(&a.RunID, &a.KeyIndex, &a.KeyName, &a.Stage, &a.Path, &a.SizeBytes, &durationMS, &created); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.CreatedAt = parseTime(created)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
