package runs

import "context"

// Repository port (interface for persistence)
type Repository interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, id ID) (*Run, error)
	// ListByDocument returns the run history for one document, newest
	// first, with prompt_text joined in.
	ListByDocument(ctx context.Context, documentFilename string) ([]Run, error)
	// UpdateResult transitions status/output/error/duration for an
	// existing run. Identity and associations are never touched.
	UpdateResult(ctx context.Context, id ID, status Status, output, errorMessage *string, durationMS *int64) error
}
