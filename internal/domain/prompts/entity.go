package prompts

import "time"

// ID identifier type
type ID string

// Prompt is an immutable saved prompt. Editing the text of an existing
// prompt and re-running produces a new record; rows are never updated.
type Prompt struct {
	ID        ID        `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptList is the wire envelope for prompt listings.
type PromptList struct {
	Prompts []Prompt `json:"prompts"`
}
