package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	clientdocs "github.com/signaldrift/signaldrift/internal/client/documents"
	"github.com/signaldrift/signaldrift/internal/client/format"
	"github.com/signaldrift/signaldrift/internal/client/gateway"
	"github.com/signaldrift/signaldrift/internal/client/prompts"
	clientruns "github.com/signaldrift/signaldrift/internal/client/runs"
	rundomain "github.com/signaldrift/signaldrift/internal/domain/runs"
)

// view selects which screen is rendered and which keys are live.
type view int

const (
	homeView view = iota
	analysisView
)

// Completion messages for blocking client operations. Every message
// carries the generation live when the operation started; stale
// results are dropped in Update.
type (
	docsRefreshedMsg   struct{ gen int }
	promptsLoadedMsg   struct{ gen int }
	historyLoadedMsg   struct{ gen int }
	runFinishedMsg     struct{ gen int }
	uploadFinishedMsg  struct {
		gen     int
		readErr string
	}
	deleteFinishedMsg  struct{ gen int }
)

// Model is the top-level bubbletea model. Exactly one client operation
// is in flight at a time (busy flag); the stores are only touched by
// the goroutine running that operation, and their snapshots are read
// after its completion message arrives.
type Model struct {
	gw    *gateway.Client
	docs  *clientdocs.Store
	pm    *prompts.Manager
	orch  *clientruns.Orchestrator

	view   view
	cursor int
	busy   bool
	// gen invalidates in-flight operations when a view is torn down.
	gen int

	// analysis view state
	docName   string
	editor    textarea.Model
	output    viewport.Model
	spin      spinner.Model
	editFocus bool

	uploading bool
	pathInput textinput.Model

	width  int
	height int
	errMsg string
}

func New(gw *gateway.Client) Model {
	editor := textarea.New()
	editor.Placeholder = "Analysis prompt..."
	editor.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pathInput := textinput.New()
	pathInput.Placeholder = "path/to/document.pdf"

	return Model{
		gw:        gw,
		docs:      clientdocs.NewStore(gw),
		pm:        prompts.NewManager(gw),
		view:      homeView,
		editor:    editor,
		output:    viewport.New(80, 12),
		spin:      sp,
		pathInput: pathInput,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshDocs(), m.spin.Tick)
}

func (m Model) refreshDocs() tea.Cmd {
	gen := m.gen
	docs := m.docs
	return func() tea.Msg {
		docs.Load(context.Background())
		return docsRefreshedMsg{gen: gen}
	}
}

func (m Model) loadPrompts() tea.Cmd {
	gen := m.gen
	pm := m.pm
	return func() tea.Msg {
		pm.Load(context.Background())
		return promptsLoadedMsg{gen: gen}
	}
}

func (m Model) loadHistory() tea.Cmd {
	gen := m.gen
	orch := m.orch
	return func() tea.Msg {
		orch.LoadHistory(context.Background())
		return historyLoadedMsg{gen: gen}
	}
}

func (m Model) executeRun() tea.Cmd {
	gen := m.gen
	orch := m.orch
	return func() tea.Msg {
		orch.Execute(context.Background())
		return runFinishedMsg{gen: gen}
	}
}

func (m Model) uploadFile(path string) tea.Cmd {
	gen := m.gen
	docs := m.docs
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return uploadFinishedMsg{gen: gen, readErr: err.Error()}
		}
		docs.Upload(context.Background(), filepath.Base(path), content)
		return uploadFinishedMsg{gen: gen}
	}
}

func (m Model) deleteFile(filename string) tea.Cmd {
	gen := m.gen
	docs := m.docs
	return func() tea.Msg {
		docs.Delete(context.Background(), filename)
		return deleteFinishedMsg{gen: gen}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = msg.Width - 4
		m.editor.SetWidth(msg.Width - 4)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case docsRefreshedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		if m.cursor >= len(m.docs.Files()) {
			m.cursor = 0
		}
		return m, nil

	case promptsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.editor.SetValue(m.pm.Text())
		// History loads after prompts so only one operation ever
		// touches the client state at a time.
		if m.view == analysisView && m.orch != nil {
			return m, m.loadHistory()
		}
		m.busy = false
		return m, nil

	case historyLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		return m, nil

	case runFinishedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		m.errMsg = m.orch.Err()
		m.output.SetContent(m.renderActiveRun())
		return m, nil

	case uploadFinishedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		if msg.readErr != "" {
			m.errMsg = msg.readErr
		} else {
			m.errMsg = m.docs.Err()
		}
		return m, nil

	case deleteFinishedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.busy = false
		m.errMsg = m.docs.Err()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.view == homeView {
		return m.handleHomeKey(msg)
	}
	return m.handleAnalysisKey(msg)
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.uploading {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			m.uploading = false
			m.pathInput.Reset()
			if path == "" || m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.uploadFile(path)
		case "esc":
			m.uploading = false
			m.pathInput.Reset()
			return m, nil
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	files := m.docs.Files()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(files)-1 {
			m.cursor++
		}
	case "r":
		if !m.busy {
			m.busy = true
			return m, m.refreshDocs()
		}
	case "u":
		m.uploading = true
		m.pathInput.Focus()
		return m, textinput.Blink
	case "d":
		if !m.busy && len(files) > 0 {
			m.busy = true
			return m, m.deleteFile(files[m.cursor].Filename)
		}
	case "enter":
		if len(files) > 0 && !m.busy {
			return m.openAnalysis(files[m.cursor].Filename)
		}
	}
	return m, nil
}

// openAnalysis tears down any previous analysis view and builds a
// fresh orchestrator bound to the chosen document.
func (m Model) openAnalysis(filename string) (tea.Model, tea.Cmd) {
	if m.orch != nil {
		m.orch.Close()
	}
	m.gen++
	m.view = analysisView
	m.docName = filename
	m.errMsg = ""
	m.orch = clientruns.NewOrchestrator(m.gw, m.pm, filename)
	m.output.SetContent("")
	m.editor.Focus()
	m.editFocus = true
	m.busy = true
	return m, m.loadPrompts()
}

func (m Model) handleAnalysisKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.orch != nil {
			m.orch.Close()
		}
		m.gen++
		m.view = homeView
		m.busy = false
		m.errMsg = ""
		return m, m.refreshDocs()
	case "tab":
		m.editFocus = !m.editFocus
		if m.editFocus {
			m.editor.Focus()
		} else {
			m.editor.Blur()
		}
		return m, nil
	case "ctrl+r":
		if m.busy || m.orch.Executing() {
			return m, nil
		}
		m.pm.SetText(m.editor.Value())
		m.busy = true
		return m, m.executeRun()
	}

	if !m.editFocus {
		switch msg.String() {
		case "up", "k":
			m.output.LineUp(1)
			return m, nil
		case "down", "j":
			m.output.LineDown(1)
			return m, nil
		default:
			if n := replayIndex(msg.String()); n >= 0 && n < len(m.orch.History()) {
				m.orch.Replay(m.orch.History()[n])
				m.editor.SetValue(m.pm.Text())
				m.errMsg = ""
				m.output.SetContent(m.renderActiveRun())
				return m, nil
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// replayIndex maps the digit keys 1-9 onto history positions.
func replayIndex(key string) int {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return int(key[0] - '1')
	}
	return -1
}

func (m Model) renderActiveRun() string {
	run := m.orch.Active()
	if run == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s  %s  %s", run.ID, statusLabel(run.Status), run.Model)
	if run.DurationMS != nil {
		fmt.Fprintf(&b, "  %s", format.FormatDuration(*run.DurationMS))
	}
	b.WriteString("\n\n")
	switch {
	case run.Status == rundomain.StatusError && run.ErrorMessage != nil:
		b.WriteString(errorStyle.Render(*run.ErrorMessage))
	case run.Status == rundomain.StatusComplete && run.Output != nil:
		b.WriteString(format.PrettyJSON(*run.Output))
	}
	return b.String()
}

func statusLabel(s rundomain.Status) string {
	switch {
	case s == rundomain.StatusComplete:
		return statusComplete.Render(string(s))
	case s == rundomain.StatusError:
		return statusError.Render(string(s))
	case s.InProgress():
		return statusPending.Render(string(s))
	default:
		return string(s)
	}
}
