package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/signaldrift/signaldrift/internal/domain/prompts"
)

type PromptRepository struct{ db *sql.DB }

func NewPromptRepository(db *sql.DB) *PromptRepository { return &PromptRepository{db: db} }

// Save inserts a prompt record. Prompts are immutable; there is no update path.
func (r *PromptRepository) Save(ctx context.Context, p *domain.Prompt) error {
	const q = `
INSERT INTO prompts (id, text, created_at)
VALUES ($1,$2,$3);`

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Text, createdAt)
	return err
}

func (r *PromptRepository) Get(ctx context.Context, id domain.ID) (*domain.Prompt, error) {
	const q = `
SELECT id, text, created_at
FROM prompts
WHERE id=$1 LIMIT 1;`

	var p domain.Prompt
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Text, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// List returns all prompts ordered by created_at asc so the oldest (the
// seeded default) comes first.
func (r *PromptRepository) List(ctx context.Context) ([]domain.Prompt, error) {
	const q = `
SELECT id, text, created_at
FROM prompts
ORDER BY created_at ASC, id ASC;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Prompt
	for rows.Next() {
		var p domain.Prompt
		if err := rows.Scan(&p.ID, &p.Text, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PromptRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
