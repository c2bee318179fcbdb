package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

const runColumns = `id, skills, status, progress, message, error, result_key, created_at, updated_at, completed_at`

// Create inserts a new run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO analysis_runs (` + runColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	skills, err := marshalSkills(run.Skills)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		run.ID,
		skills,
		run.Status,
		run.Progress,
		run.Message,
		nullString(run.Error),
		nullString(run.ResultKey),
		run.CreatedAt,
		run.UpdatedAt,
		run.CompletedAt,
	)
	return err
}

// Update writes the mutable fields of a run.
func (r *PGRepo) Update(ctx context.Context, run Run) error {
	const query = `
UPDATE analysis_runs
SET status = $2, progress = $3, message = $4, error = $5, result_key = $6, updated_at = $7, completed_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.Progress,
		run.Message,
		nullString(run.Error),
		nullString(run.ResultKey),
		run.UpdatedAt,
		run.CompletedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Run, error) {
	const query = `SELECT ` + runColumns + ` FROM analysis_runs WHERE id = $1 LIMIT 1`
	return scanRun(r.DB.QueryRowContext(ctx, query, id))
}

// Latest returns the most recently created run.
func (r *PGRepo) Latest(ctx context.Context) (Run, error) {
	const query = `SELECT ` + runColumns + ` FROM analysis_runs ORDER BY created_at DESC LIMIT 1`
	return scanRun(r.DB.QueryRowContext(ctx, query))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var skills []byte
	var errMsg sql.NullString
	var resultKey sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&skills,
		&run.Status,
		&run.Progress,
		&run.Message,
		&errMsg,
		&resultKey,
		&run.CreatedAt,
		&run.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &run.Skills); err != nil {
			return Run{}, fmt.Errorf("decode skills for run %s: %w", run.ID, err)
		}
	}
	run.Error = errMsg.String
	run.ResultKey = resultKey.String
	if completedAt.Valid {
		at := completedAt.Time
		run.CompletedAt = &at
	}
	return run, nil
}

func marshalSkills(skills []string) ([]byte, error) {
	if skills == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(skills)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
