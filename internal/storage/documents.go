package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
)

// SaveSnapshots stores the raw market snapshots for a fetch batch. Snapshots
// are append-only; a token fetched twice at the same instant is stored once.
func (s *SQLiteStorage) SaveSnapshots(ctx context.Context, candidates []model.TokenCandidate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO token_snapshots
		(address, fetched_at, symbol, document) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range candidates {
		doc, err := json.Marshal(&candidates[i])
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot for %s: %w", candidates[i].Address, err)
		}
		if _, err := stmt.ExecContext(ctx, candidates[i].Address, candidates[i].FetchedAt.UTC(), candidates[i].Symbol, string(doc)); err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", candidates[i].Address, err)
		}
	}

	return tx.Commit()
}

// UpsertResult stores a fully annotated candidate for a run. Re-running a
// persist for the same run and address overwrites the previous document, so
// retried persists are idempotent.
func (s *SQLiteStorage) UpsertResult(ctx context.Context, runID string, candidate *model.TokenCandidate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if candidate == nil {
		return fmt.Errorf("candidate is required")
	}
	if runID == "" {
		return fmt.Errorf("run ID is required")
	}

	doc, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("failed to marshal result for %s: %w", candidate.Address, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO token_results (address, run_id, symbol, document)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address, run_id) DO UPDATE SET
			symbol = excluded.symbol,
			document = excluded.document`,
		candidate.Address, runID, candidate.Symbol, string(doc))
	if err != nil {
		return fmt.Errorf("failed to upsert result for %s: %w", candidate.Address, err)
	}

	return nil
}

// GetResultsByRun returns all persisted candidates for a run, ordered by
// symbol for stable output.
func (s *SQLiteStorage) GetResultsByRun(ctx context.Context, runID string) ([]model.TokenCandidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT document FROM token_results
		WHERE run_id = ? ORDER BY symbol, address`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []model.TokenCandidate
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var candidate model.TokenCandidate
		if err := json.Unmarshal([]byte(doc), &candidate); err != nil {
			return nil, fmt.Errorf("failed to decode result document: %w", err)
		}
		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}

// SaveRun stores the run record with its stage statistics. An existing record
// for the same run ID is replaced, which lets the pipeline write a final
// record over an interim one.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.PipelineRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run is required")
	}

	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.RunID, err)
	}

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO pipeline_runs (run_id, started_at, finished_at, document)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			finished_at = excluded.finished_at,
			document = excluded.document`,
		run.RunID, run.StartedAt.UTC(), finished, string(doc))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}

	return nil
}

// GetLatestRunID returns the ID of the most recently started run.
func (s *SQLiteStorage) GetLatestRunID(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM pipeline_runs
		ORDER BY started_at DESC, run_id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}

	return runID, nil
}
