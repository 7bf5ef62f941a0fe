package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/streamsim/pkg/logstream"
	"github.com/rmax-ai/streamsim/pkg/simulation"
)

func (m Model) View() string {
	var body string
	if m.screen == screenLogs {
		body = m.logsView()
	} else {
		body = m.formView()
	}

	if m.alert != "" {
		box := alertStyle.Render(m.alert + "\n\n" + subtleStyle.Render("Press any key to continue"))
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return mainStyle.Render(box)
	}
	return mainStyle.Render(body)
}

func (m Model) formView() string {
	cur := m.focused()
	var sections []string

	sections = append(sections, headerStyle.Render("Stream Simulation Console"))

	// URL
	urlIdx := m.inputIndex(simulation.FieldURL)
	sections = append(sections, m.fieldRow(urlIdx))

	// Variant picker
	var picker strings.Builder
	picker.WriteString(labelStyle.Render("Simulation type") + "\n")
	selected := m.variantIndex()
	for i, spec := range m.variants {
		mark := "○"
		style := subtleStyle
		if i == selected {
			mark = "●"
			style = selectedStyle
		}
		picker.WriteString(style.Render(fmt.Sprintf(" %s [%d] %s", mark, i+1, spec.Title)) + "\n")
	}
	pane := paneStyle
	if cur.kind == targetPicker {
		pane = focusedPaneStyle
	}
	sections = append(sections, pane.Render(strings.TrimRight(picker.String(), "\n")))

	// Variant fields
	if selected >= 0 {
		spec := m.variants[selected]
		var fields strings.Builder
		fields.WriteString(selectedStyle.Render(spec.Title) + "\n")
		for _, f := range spec.Fields {
			fields.WriteString(m.fieldRow(m.inputIndex(f)) + "\n")
		}
		sections = append(sections, paneStyle.Render(strings.TrimRight(fields.String(), "\n")))
	}

	// Submit
	button := buttonStyle
	if cur.kind == targetSubmit {
		button = focusedButtonStyle
	}
	submit := button.Render("Start Simulation")
	if m.submitting {
		submit = lipgloss.JoinHorizontal(lipgloss.Center, submit, " ", m.spinner.View())
	}
	sections = append(sections, submit)

	// Playback URL
	if m.generatedURL != "" {
		indicator := subtleStyle.Render("ctrl+y copy")
		if m.deps.Clipboard.Copied() {
			indicator = okStyle.Render("✓ copied")
		}
		line := fmt.Sprintf("%s  %s  %s",
			infoStyle.Render(m.generatedURL),
			indicator,
			subtleStyle.Render("ctrl+l logs"),
		)
		sections = append(sections, paneStyle.Render(line))
	}

	sections = append(sections, m.statusLine())
	sections = append(sections, subtleStyle.Render("tab/shift+tab move • ←/→ or 1-4 pick simulation • enter/ctrl+s start • ctrl+c quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) fieldRow(i int) string {
	if i < 0 {
		return ""
	}
	spec := m.fields[i]
	row := labelStyle.Render(spec.Label) + m.inputs[i].View()
	if reason, ok := m.fieldErrs[spec.Name]; ok {
		row += "  " + errorStyle.Render(reason)
	}
	return row
}

func (m Model) logsView() string {
	title := "Logs"
	if m.session != nil {
		switch m.session.State() {
		case logstream.StateOpen:
			title = fmt.Sprintf("Logs • live • %d lines", len(m.logLines))
		case logstream.StateClosed:
			title = fmt.Sprintf("Logs • closed • %d lines", len(m.logLines))
		default:
			title = "Logs • connecting"
		}
	}

	content := m.viewport.View()
	if len(m.logLines) == 0 {
		content = subtleStyle.Render("Waiting for log lines…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(title),
		paneStyle.Render(logLineStyle.Render(content)),
		m.statusLine(),
		subtleStyle.Render("↑/↓ scroll • esc/q close • ctrl+c quit"),
	)
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return okStyle.Render(m.status)
}
