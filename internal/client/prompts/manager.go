// Package prompts holds the client-side prompt list plus the
// selection and edit-buffer pair.
package prompts

import (
	"context"
	"sync/atomic"

	"github.com/signaldrift/signaldrift/internal/client/gateway"
	domain "github.com/signaldrift/signaldrift/internal/domain/prompts"
)

// Manager owns the saved prompt list, the selected prompt id, and the
// edit buffer. Prompts are immutable server-side: editing text and
// running produces a new prompt record, decided by ResolveForRun.
// Methods are called from a single goroutine.
type Manager struct {
	gw *gateway.Client

	prompts  []domain.Prompt
	selected domain.ID
	buffer   string

	gen atomic.Int64
}

func NewManager(gw *gateway.Client) *Manager {
	return &Manager{gw: gw}
}

// Prompts returns the current snapshot.
func (m *Manager) Prompts() []domain.Prompt { return m.prompts }

// Selected returns the selected prompt id, empty when none.
func (m *Manager) Selected() domain.ID { return m.selected }

// Text returns the edit buffer.
func (m *Manager) Text() string { return m.buffer }

// Contains reports whether id is present in the last-loaded list.
func (m *Manager) Contains(id domain.ID) bool {
	return m.find(id) != nil
}

func (m *Manager) find(id domain.ID) *domain.Prompt {
	for i := range m.prompts {
		if m.prompts[i].ID == id {
			return &m.prompts[i]
		}
	}
	return nil
}

// Load refreshes the prompt list. On the first successful load with no
// selection yet, the first prompt is auto-selected and the edit buffer
// initialized to its text. Failures are silent.
func (m *Manager) Load(ctx context.Context) {
	gen := m.gen.Load()
	res := gateway.FetchJSON[domain.PromptList](ctx, m.gw, "/api/v1/prompts")
	if gen != m.gen.Load() {
		return
	}
	if !res.OK {
		return
	}
	m.prompts = res.Data.Prompts
	if m.selected == "" && len(m.prompts) > 0 {
		m.selected = m.prompts[0].ID
		m.buffer = m.prompts[0].Text
	}
}

// Select sets the selected prompt and overwrites the edit buffer with
// its stored text. Unsaved edits are discarded without confirmation;
// the silent overwrite is deliberate.
func (m *Manager) Select(id domain.ID) {
	p := m.find(id)
	if p == nil {
		return
	}
	m.selected = id
	m.buffer = p.Text
}

// SetText updates the edit buffer only.
func (m *Manager) SetText(text string) {
	m.buffer = text
}

// ResolveForRun returns the prompt id to run with. When the buffer
// matches the selected prompt's stored text verbatim the selected id is
// reused; otherwise a new prompt is created from the buffer, selected,
// and the list refreshed. Returns an error string on creation failure.
func (m *Manager) ResolveForRun(ctx context.Context) (domain.ID, string) {
	if p := m.find(m.selected); p != nil && p.Text == m.buffer {
		return m.selected, ""
	}

	gen := m.gen.Load()
	res := gateway.PostJSON[domain.Prompt](ctx, m.gw, "/api/v1/prompts", map[string]string{"text": m.buffer})
	if gen != m.gen.Load() {
		return "", "prompt manager closed"
	}
	if !res.OK {
		return "", res.Err
	}
	m.selected = res.Data.ID
	m.Load(ctx)
	return res.Data.ID, ""
}

// Close invalidates any outstanding operation so its result is never
// applied to this manager.
func (m *Manager) Close() {
	m.gen.Add(1)
}
