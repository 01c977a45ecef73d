package prompts

import "context"

// Repository port for persisting and querying prompts
type Repository interface {
	Save(ctx context.Context, p *Prompt) error
	Get(ctx context.Context, id ID) (*Prompt, error)
	List(ctx context.Context) ([]Prompt, error)
	Count(ctx context.Context) (int64, error)
}
