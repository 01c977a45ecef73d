package runs

import (
	"time"
)

// ID identifier type
type ID string

// Status enum as reported by the server
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// InProgress reports whether the run has not yet reached a terminal
// status. Anything other than complete/error renders as in-progress.
func (s Status) InProgress() bool {
	return s != StatusComplete && s != StatusError
}

// Run is one analysis of a prompt against a document. Identity and the
// document/prompt association never change once created; only status,
// output, duration and error transition as the run progresses.
type Run struct {
	ID               ID        `json:"id"`
	PromptID         string    `json:"prompt_id"`
	DocumentFilename string    `json:"document_filename"`
	Model            string    `json:"model"`
	Output           *string   `json:"output"`
	Status           Status    `json:"status"`
	ErrorMessage     *string   `json:"error_message"`
	DurationMS       *int64    `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
	// PromptText is denormalized from the prompt at run time so the run
	// can be displayed and replayed without a join.
	PromptText string `json:"prompt_text"`
}

// RunList is the wire envelope for run history listings.
type RunList struct {
	Runs []Run `json:"runs"`
}
