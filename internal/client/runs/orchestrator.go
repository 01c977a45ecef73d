// Package runs drives analysis execution and run history for one
// document view.
package runs

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/signaldrift/signaldrift/internal/client/gateway"
	"github.com/signaldrift/signaldrift/internal/client/prompts"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
	domain "github.com/signaldrift/signaldrift/internal/domain/runs"
)

// Orchestrator owns the active-run slot and the history list for a
// single document. Construct one per document view, with the document
// identity injected; never share across documents. Methods are called
// from a single goroutine.
type Orchestrator struct {
	gw      *gateway.Client
	pm      *prompts.Manager
	docName string

	active  *domain.Run
	history []domain.Run
	err     string

	// executing and gen are the only fields touched across goroutines:
	// the single-flight guard and the teardown generation counter.
	executing atomic.Bool
	gen       atomic.Int64
}

func NewOrchestrator(gw *gateway.Client, pm *prompts.Manager, documentFilename string) *Orchestrator {
	return &Orchestrator{gw: gw, pm: pm, docName: documentFilename}
}

// Active returns the displayed run, nil when none.
func (o *Orchestrator) Active() *domain.Run { return o.active }

// History returns the run history snapshot, newest first.
func (o *Orchestrator) History() []domain.Run { return o.history }

// Err returns the last execution failure, empty when the last attempt
// reached the server and came back as a run record.
func (o *Orchestrator) Err() string { return o.err }

// Executing reports whether a run request is in flight.
func (o *Orchestrator) Executing() bool { return o.executing.Load() }

// LoadHistory refreshes the history list wholesale. Failures are
// silent: the previous snapshot stays in place.
func (o *Orchestrator) LoadHistory(ctx context.Context) {
	gen := o.gen.Load()
	res := gateway.FetchJSON[domain.RunList](ctx, o.gw,
		"/api/v1/runs?document_filename="+url.QueryEscape(o.docName))
	if gen != o.gen.Load() {
		return
	}
	if res.OK {
		o.history = res.Data.Runs
	}
}

// Execute resolves the prompt, issues the analyse request, and then
// unconditionally reloads history. At most one execution runs at a
// time; concurrent attempts are rejected, not queued. On request
// failure the active run is cleared, never left stale.
func (o *Orchestrator) Execute(ctx context.Context) {
	if strings.TrimSpace(o.pm.Text()) == "" {
		o.err = "Prompt text is required"
		return
	}
	if !o.executing.CompareAndSwap(false, true) {
		return
	}
	defer o.executing.Store(false)
	gen := o.gen.Load()

	// Every attempt starts from a clean slate; the previous active run
	// is never left on screen while a new one is being requested.
	o.active = nil

	promptID, perr := o.pm.ResolveForRun(ctx)
	if gen != o.gen.Load() {
		return
	}
	if perr != "" {
		o.err = perr
		return
	}

	res := gateway.PostJSON[domain.Run](ctx, o.gw, "/api/v1/analyse", map[string]string{
		"prompt_id":         string(promptID),
		"document_filename": o.docName,
	})
	if gen != o.gen.Load() {
		return
	}
	if res.OK {
		run := res.Data
		o.active = &run
		o.err = ""
	} else {
		o.active = nil
		o.err = res.Err
	}

	// History is the authoritative post-attempt snapshot, reloaded
	// whether or not the analyse call succeeded.
	o.LoadHistory(ctx)
}

// Replay sets a historical run as the active one and pushes its
// recorded prompt text into the editor, re-selecting the originating
// prompt when it still exists. Pure view-state transition, no network.
func (o *Orchestrator) Replay(run domain.Run) {
	r := run
	o.active = &r
	o.err = ""
	if id := promptdomain.ID(run.PromptID); o.pm.Contains(id) {
		o.pm.Select(id)
	}
	o.pm.SetText(run.PromptText)
}

// Close invalidates any outstanding operation so its result is never
// applied to this orchestrator.
func (o *Orchestrator) Close() {
	o.gen.Add(1)
}
