package ai

import "context"

// Document is the material handed to the analyzer alongside the prompt.
type Document struct {
	Filename string
	Content  []byte
}

// Analyzer port (interface for the model backend)
type Analyzer interface {
	// Analyze executes the prompt against the document and returns the
	// raw model output, typically JSON text.
	Analyze(ctx context.Context, prompt string, doc Document) (string, error)
}
