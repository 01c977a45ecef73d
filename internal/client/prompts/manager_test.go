package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldrift/signaldrift/internal/client/gateway"
	domain "github.com/signaldrift/signaldrift/internal/domain/prompts"
)

// fakeAPI serves the prompts endpoints and counts creations.
type fakeAPI struct {
	mu      sync.Mutex
	prompts []domain.Prompt
	created int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/prompts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			f.mu.Lock()
			defer f.mu.Unlock()
			json.NewEncoder(w).Encode(domain.PromptList{Prompts: f.prompts})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		var body struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.created++
		p := domain.Prompt{
			ID:        domain.ID(fmt.Sprintf("00000000-0000-0000-0000-%012d", f.created)),
			Text:      body.Text,
			CreatedAt: time.Now().UTC(),
		}
		f.prompts = append(f.prompts, p)
		json.NewEncoder(w).Encode(p)
	})
	return mux
}

func newTestManager(t *testing.T, api *fakeAPI) *Manager {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewManager(gateway.New(srv.URL, ""))
}

func seeded(texts ...string) *fakeAPI {
	api := &fakeAPI{}
	for i, text := range texts {
		api.prompts = append(api.prompts, domain.Prompt{
			ID:   domain.ID(fmt.Sprintf("11111111-0000-0000-0000-%012d", i+1)),
			Text: text,
		})
	}
	return api
}

func TestLoadAutoSelectsFirst(t *testing.T) {
	m := newTestManager(t, seeded("Summarize.", "Extract claims."))
	m.Load(context.Background())

	require.Len(t, m.Prompts(), 2)
	assert.Equal(t, m.Prompts()[0].ID, m.Selected())
	assert.Equal(t, "Summarize.", m.Text())
}

func TestLoadKeepsExistingSelection(t *testing.T) {
	m := newTestManager(t, seeded("Summarize.", "Extract claims."))
	m.Load(context.Background())
	second := m.Prompts()[1].ID
	m.Select(second)

	m.Load(context.Background())
	assert.Equal(t, second, m.Selected())
	assert.Equal(t, "Extract claims.", m.Text())
}

func TestSelectSilentlyOverwritesBuffer(t *testing.T) {
	m := newTestManager(t, seeded("Summarize.", "Extract claims."))
	m.Load(context.Background())

	m.SetText("half-finished edit")
	m.Select(m.Prompts()[1].ID)

	// unsaved edits are discarded without confirmation
	assert.Equal(t, "Extract claims.", m.Text())
}

func TestSetTextLeavesSelectionAlone(t *testing.T) {
	m := newTestManager(t, seeded("Summarize."))
	m.Load(context.Background())
	selected := m.Selected()

	m.SetText("Summarize in 3 bullets.")
	assert.Equal(t, selected, m.Selected())
	assert.Equal(t, "Summarize in 3 bullets.", m.Text())
}

func TestResolveForRunReusesUnchangedPrompt(t *testing.T) {
	api := seeded("Summarize.")
	m := newTestManager(t, api)
	m.Load(context.Background())

	id, errMsg := m.ResolveForRun(context.Background())
	assert.Empty(t, errMsg)
	assert.Equal(t, m.Prompts()[0].ID, id)
	assert.Zero(t, api.created)
}

func TestResolveForRunCreatesOnDivergence(t *testing.T) {
	api := seeded("Summarize.")
	m := newTestManager(t, api)
	m.Load(context.Background())

	m.SetText("Summarize in 3 bullets.")
	id, errMsg := m.ResolveForRun(context.Background())

	require.Empty(t, errMsg)
	assert.Equal(t, 1, api.created)
	assert.Equal(t, id, m.Selected())
	// the refreshed list contains the new prompt
	assert.True(t, m.Contains(id))
}

func TestResolveForRunIdempotent(t *testing.T) {
	api := seeded("Summarize.")
	m := newTestManager(t, api)
	m.Load(context.Background())

	m.SetText("Summarize in 3 bullets.")
	first, errMsg := m.ResolveForRun(context.Background())
	require.Empty(t, errMsg)

	second, errMsg := m.ResolveForRun(context.Background())
	require.Empty(t, errMsg)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.created)
}

func TestResolveForRunCreationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"Prompt text is required"}`))
			return
		}
		json.NewEncoder(w).Encode(domain.PromptList{})
	}))
	t.Cleanup(srv.Close)

	m := NewManager(gateway.New(srv.URL, ""))
	m.Load(context.Background())
	m.SetText("   ")

	id, errMsg := m.ResolveForRun(context.Background())
	assert.Empty(t, id)
	assert.Equal(t, "Prompt text is required", errMsg)
}
