package tui

import (
	"fmt"
	"strings"

	"github.com/signaldrift/signaldrift/internal/client/format"
)

func (m Model) View() string {
	if m.view == homeView {
		return m.homeViewRender()
	}
	return m.analysisViewRender()
}

func (m Model) homeViewRender() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SignalDrift · Documents"))
	b.WriteString("\n")

	if m.uploading {
		b.WriteString("Upload file: " + m.pathInput.View() + "\n")
		b.WriteString(helpStyle.Render("enter: upload  esc: cancel"))
		return b.String()
	}

	files := m.docs.Files()
	if len(files) == 0 {
		b.WriteString(dimStyle.Render("No documents uploaded yet.") + "\n")
	}
	for i, f := range files {
		line := fmt.Sprintf("%s  %s  %s  %s",
			format.DisplayName(f.Filename),
			format.Extension(f.Filename),
			format.FormatSize(f.Size),
			f.UploadedAt.Format("2006-01-02 15:04"),
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if m.busy {
		b.WriteString("\n" + m.spin.View() + dimStyle.Render(" working..."))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + helpStyle.Render("enter: analyse  u: upload  d: delete  r: refresh  q: quit"))
	return b.String()
}

func (m Model) analysisViewRender() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Analysis · " + format.DisplayName(m.docName)))
	b.WriteString("\n")

	b.WriteString(m.editor.View() + "\n\n")

	if m.busy || (m.orch != nil && m.orch.Executing()) {
		b.WriteString(m.spin.View() + dimStyle.Render(" running analysis...") + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	if m.orch != nil && m.orch.Active() != nil {
		b.WriteString(outputStyle.Render(m.output.View()) + "\n")
	}

	if m.orch != nil && len(m.orch.History()) > 0 {
		b.WriteString(dimStyle.Render("History (press 1-9 to replay):") + "\n")
		for i, r := range m.orch.History() {
			if i >= 9 {
				break
			}
			duration := "-"
			if r.DurationMS != nil {
				duration = format.FormatDuration(*r.DurationMS)
			}
			b.WriteString(fmt.Sprintf("  %d. %s  %s  %s\n",
				i+1, statusLabel(r.Status), duration, r.CreatedAt.Format("01-02 15:04")))
		}
	}

	b.WriteString(helpStyle.Render("ctrl+r: run  tab: switch focus  esc: back  ctrl+c: quit"))
	return b.String()
}
