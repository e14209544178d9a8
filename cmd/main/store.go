package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RunInfo holds the metadata for a recorded generation run.
type RunInfo struct {
	Id         string
	Model      string
	Count      int
	Length     int
	Seed       string
	MinEntropy float64
	CreatedAt  time.Time
}

// SetupStoreSchema initializes the run store tables in the provided
// database. It is idempotent and safe to call on an already-initialized
// database.
func SetupStoreSchema(db *sql.DB) error {
	const (
		schemaRuns = `
CREATE TABLE IF NOT EXISTS passgen_runs (
    run_id TEXT PRIMARY KEY,
    model_name TEXT NOT NULL,
    candidate_count INTEGER NOT NULL,
    candidate_length INTEGER NOT NULL,
    seed TEXT NOT NULL DEFAULT '',
    min_entropy REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);
`
		schemaCandidates = `
CREATE TABLE IF NOT EXISTS passgen_candidates (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    candidate TEXT NOT NULL,
    PRIMARY KEY (run_id, position)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}
	if _, err = tx.Exec(schemaCandidates); err != nil {
		return fmt.Errorf("could not create candidates schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// RunStore persists generation runs and their candidate lists. It holds the
// database connection and prepared SQL statements for efficient access.
type RunStore struct {
	db                  *sql.DB
	logger              *slog.Logger
	stmtInsertRun       *sql.Stmt
	stmtInsertCandidate *sql.Stmt
	stmtListRuns        *sql.Stmt
	stmtGetRun          *sql.Stmt
	stmtGetCandidates   *sql.Stmt
}

// NewRunStore creates a RunStore over an initialized database, pre-compiling
// all necessary SQL statements.
func NewRunStore(db *sql.DB, logger *slog.Logger) (*RunStore, error) {
	stmtInsertRun, err := db.Prepare(`INSERT INTO passgen_runs (run_id, model_name, candidate_count, candidate_length, seed, min_entropy, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInsertCandidate, err := db.Prepare(`INSERT INTO passgen_candidates (run_id, position, candidate) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtListRuns, err := db.Prepare(`SELECT run_id, model_name, candidate_count, candidate_length, seed, min_entropy, created_at FROM passgen_runs ORDER BY created_at DESC;`)
	if err != nil {
		return nil, err
	}

	stmtGetRun, err := db.Prepare(`SELECT run_id, model_name, candidate_count, candidate_length, seed, min_entropy, created_at FROM passgen_runs WHERE run_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetCandidates, err := db.Prepare(`SELECT candidate FROM passgen_candidates WHERE run_id = ? ORDER BY position;`)
	if err != nil {
		return nil, err
	}

	return &RunStore{
		db:                  db,
		logger:              logger,
		stmtInsertRun:       stmtInsertRun,
		stmtInsertCandidate: stmtInsertCandidate,
		stmtListRuns:        stmtListRuns,
		stmtGetRun:          stmtGetRun,
		stmtGetCandidates:   stmtGetCandidates,
	}, nil
}

// Close releases all prepared SQL statements held by the RunStore.
func (s *RunStore) Close() {
	_ = s.stmtInsertRun.Close()
	_ = s.stmtInsertCandidate.Close()
	_ = s.stmtListRuns.Close()
	_ = s.stmtGetRun.Close()
	_ = s.stmtGetCandidates.Close()
}

// RecordRun stores a run and its candidate list in a single transaction.
// If info.Id is empty a new run ID is assigned; the completed RunInfo is
// returned.
func (s *RunStore) RecordRun(ctx context.Context, info RunInfo, candidates []string) (RunInfo, error) {
	if info.Id == "" {
		info.Id = uuid.NewString()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunInfo{}, fmt.Errorf("could not begin transaction for run: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertRun := tx.StmtContext(ctx, s.stmtInsertRun)
	if _, err = stmtInsertRun.ExecContext(ctx, info.Id, info.Model, info.Count, info.Length, info.Seed, info.MinEntropy, info.CreatedAt.Unix()); err != nil {
		return RunInfo{}, fmt.Errorf("failed to insert run %s: %w", info.Id, err)
	}

	stmtInsertCandidate := tx.StmtContext(ctx, s.stmtInsertCandidate)
	for i, candidate := range candidates {
		if _, err = stmtInsertCandidate.ExecContext(ctx, info.Id, i, candidate); err != nil {
			return RunInfo{}, fmt.Errorf("failed to insert candidate %d of run %s: %w", i, info.Id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return RunInfo{}, err
	}

	s.logger.InfoContext(ctx, "Run recorded",
		slog.String("run_id", info.Id),
		slog.String("model_name", info.Model),
		slog.Int("candidates", len(candidates)),
	)
	return info, nil
}

// ListRuns returns the metadata of every recorded run, newest first.
func (s *RunStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.stmtListRuns.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun retrieves the metadata of a single run by ID.
func (s *RunStore) GetRun(ctx context.Context, runID string) (RunInfo, error) {
	var info RunInfo
	var created int64
	err := s.stmtGetRun.QueryRowContext(ctx, runID).
		Scan(&info.Id, &info.Model, &info.Count, &info.Length, &info.Seed, &info.MinEntropy, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunInfo{}, fmt.Errorf("run %s not found: %w", runID, err)
		}
		return RunInfo{}, err
	}
	info.CreatedAt = time.Unix(created, 0).UTC()
	return info, nil
}

// GetCandidates returns the candidate list of a run in generation order.
func (s *RunStore) GetCandidates(ctx context.Context, runID string) ([]string, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.stmtGetCandidates.QueryContext(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var candidates []string
	for rows.Next() {
		var candidate string
		if err = rows.Scan(&candidate); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// DeleteRun removes a run and its candidates. The operation is performed
// within a transaction.
func (s *RunStore) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM passgen_candidates WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to remove candidates for run %s: %w", runID, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM passgen_runs WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to remove run %s: %w", runID, err)
	}

	s.logger.InfoContext(ctx, "Run removed",
		slog.String("run_id", runID),
	)
	return tx.Commit()
}

// scanRun reads one RunInfo from a row set positioned on a run row.
func scanRun(rows *sql.Rows) (RunInfo, error) {
	var info RunInfo
	var created int64
	if err := rows.Scan(&info.Id, &info.Model, &info.Count, &info.Length, &info.Seed, &info.MinEntropy, &created); err != nil {
		return RunInfo{}, err
	}
	info.CreatedAt = time.Unix(created, 0).UTC()
	return info, nil
}
