package prompts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/signaldrift/signaldrift/internal/application"
	domain "github.com/signaldrift/signaldrift/internal/domain/prompts"
)

// ErrEmptyText rejects prompt creation with no usable text.
var ErrEmptyText = errors.New("Prompt text is required")

// Service implements prompt use-cases. Prompts are append-only.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

func (s *Service) List(ctx context.Context) ([]domain.Prompt, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Prompt, error) {
	return s.Repo.Get(ctx, id)
}

// Create stores a new immutable prompt and returns it.
func (s *Service) Create(ctx context.Context, text string) (*domain.Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	p := &domain.Prompt{
		ID:        domain.ID(uuid.New().String()),
		Text:      text,
		CreatedAt: s.Clock.Now().UTC(),
	}
	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SeedDefault inserts the stock prompt when the table is empty, so a
// fresh install always has one prompt to select.
func (s *Service) SeedDefault(ctx context.Context, text string) error {
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	p := &domain.Prompt{
		ID:        domain.ID(uuid.New().String()),
		Text:      text,
		CreatedAt: s.Clock.Now().UTC(),
	}
	return s.Repo.Save(ctx, p)
}
