package runs

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/signaldrift/signaldrift/internal/application"
	"github.com/signaldrift/signaldrift/internal/domain/ai"
	docdomain "github.com/signaldrift/signaldrift/internal/domain/documents"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
	domain "github.com/signaldrift/signaldrift/internal/domain/runs"
)

// maxDocumentBytes bounds how much of a document is read for analysis.
const maxDocumentBytes = 8 << 20

var (
	ErrPromptNotFound   = errors.New("Prompt not found")
	ErrDocumentNotFound = errors.New("Document not found")
)

// Service implements run use-cases. A run is executed synchronously:
// the caller gets the terminal record back in one response.
type Service struct {
	Runs    domain.Repository
	Prompts promptdomain.Repository
	Files   docdomain.FileStore
	AI      ai.Analyzer
	Model   string
	Clock   application.Clock
}

// History returns all runs for one document, newest first.
func (s *Service) History(ctx context.Context, documentFilename string) ([]domain.Run, error) {
	return s.Runs.ListByDocument(ctx, documentFilename)
}

// Execute runs the prompt against the document: create the run pending,
// mark it running, call the model, then record the terminal state. A
// model failure becomes a run with status error, not a failed request.
func (s *Service) Execute(ctx context.Context, promptID promptdomain.ID, documentFilename string) (*domain.Run, error) {
	p, err := s.Prompts.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPromptNotFound
	}

	rc, err := s.Files.Open(ctx, documentFilename)
	if err != nil {
		if errors.Is(err, docdomain.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	content, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes))
	rc.Close()
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().UTC()
	run := &domain.Run{
		ID:               domain.ID(uuid.New().String()),
		PromptID:         string(p.ID),
		DocumentFilename: documentFilename,
		Model:            s.Model,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		PromptText:       p.Text,
	}
	if err := s.Runs.Save(ctx, run); err != nil {
		return nil, err
	}

	if err := s.Runs.UpdateResult(ctx, run.ID, domain.StatusRunning, nil, nil, nil); err != nil {
		return nil, err
	}
	run.Status = domain.StatusRunning

	start := s.Clock.Now()
	output, aerr := s.AI.Analyze(ctx, p.Text, ai.Document{Filename: documentFilename, Content: content})
	duration := s.Clock.Now().Sub(start).Milliseconds()

	if aerr != nil {
		msg := aerr.Error()
		if err := s.Runs.UpdateResult(ctx, run.ID, domain.StatusError, nil, &msg, &duration); err != nil {
			return nil, err
		}
		if errors.Is(aerr, ai.ErrQuotaExceeded) {
			// The run is recorded, but quota exhaustion is still a
			// request-level failure so callers can back off.
			return nil, aerr
		}
		run.Status = domain.StatusError
		run.ErrorMessage = &msg
		run.DurationMS = &duration
		return run, nil
	}

	if err := s.Runs.UpdateResult(ctx, run.ID, domain.StatusComplete, &output, nil, &duration); err != nil {
		return nil, err
	}
	run.Status = domain.StatusComplete
	run.Output = &output
	run.DurationMS = &duration
	return run, nil
}
