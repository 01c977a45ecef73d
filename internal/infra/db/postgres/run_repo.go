package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/signaldrift/signaldrift/internal/domain/runs"
)

type RunRepository struct{ db *sql.DB }

func NewRunRepository(db *sql.DB) *RunRepository { return &RunRepository{db: db} }

// Save inserts the initial run record.
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO runs
(id, prompt_id, document_filename, model, output, status, error_message, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		run.ID, run.PromptID, run.DocumentFilename, run.Model,
		nullString(run.Output), run.Status, nullString(run.ErrorMessage), nullInt64(run.DurationMS),
		createdAt,
	)
	return err
}

// Get returns one run with its prompt text joined in.
func (r *RunRepository) Get(ctx context.Context, id domain.ID) (*domain.Run, error) {
	const q = `
SELECT r.id, r.prompt_id, r.document_filename, r.model, r.output, r.status,
       r.error_message, r.duration_ms, r.created_at, p.text
FROM runs r JOIN prompts p ON r.prompt_id = p.id
WHERE r.id=$1 LIMIT 1;`

	run, err := scanRun(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

// ListByDocument returns the run history for a document, newest first.
func (r *RunRepository) ListByDocument(ctx context.Context, documentFilename string) ([]domain.Run, error) {
	const q = `
SELECT r.id, r.prompt_id, r.document_filename, r.model, r.output, r.status,
       r.error_message, r.duration_ms, r.created_at, p.text
FROM runs r JOIN prompts p ON r.prompt_id = p.id
WHERE r.document_filename=$1
ORDER BY r.created_at DESC, r.id DESC;`

	rows, err := r.db.QueryContext(ctx, q, documentFilename)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// UpdateResult transitions only the mutable columns of a run.
func (r *RunRepository) UpdateResult(ctx context.Context, id domain.ID, status domain.Status, output, errorMessage *string, durationMS *int64) error {
	const q = `
UPDATE runs
SET status = $2,
    output = $3,
    error_message = $4,
    duration_ms = $5
WHERE id = $1;`

	_, err := r.db.ExecContext(ctx, q,
		id, status, nullString(output), nullString(errorMessage), nullInt64(durationMS),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var output, errMsg sql.NullString
	var duration sql.NullInt64
	if err := row.Scan(
		&run.ID, &run.PromptID, &run.DocumentFilename, &run.Model, &output, &run.Status,
		&errMsg, &duration, &run.CreatedAt, &run.PromptText,
	); err != nil {
		return nil, err
	}
	run.Output = fromNullString(output)
	run.ErrorMessage = fromNullString(errMsg)
	run.DurationMS = fromNullInt64(duration)
	return &run, nil
}
