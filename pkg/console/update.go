package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmax-ai/streamsim/pkg/logstream"
	"github.com/rmax-ai/streamsim/pkg/simulation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		h := msg.Height - 8
		if h > viewportHeight || h <= 0 {
			h = viewportHeight
		}
		m.viewport.Height = h
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// The session, if any, is released by Run once the program exits.
			return m, tea.Quit
		}
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		if m.screen == screenLogs {
			return m.updateLogs(msg)
		}
		return m.updateForm(msg)

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.setError(fmt.Sprintf("Submission failed: %v", msg.err))
			return m, nil
		}
		m.generatedURL = msg.url
		m.setStatus(fmt.Sprintf("%s started.", variantTitle(msg.variant)))
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			// Copy failures stay in the diagnostic log.
			return m, nil
		}
		return m, expireCopyCmd(m.deps.Clipboard.Window())

	case copyExpiredMsg:
		return m, nil

	case sessionOpenedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.err != nil {
			m.setError(fmt.Sprintf("Could not connect to log stream: %v", msg.err))
			return m, nil
		}
		m.setStatus("Streaming logs.")
		return m, waitForActivity(msg.session)

	case sessionActivityMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.syncFeed()
		if msg.session.State() == logstream.StateClosed {
			m.setStatus(closedStatus(msg.session))
			return m, nil
		}
		return m, waitForActivity(msg.session)

	case sessionReleasedMsg:
		return m, nil
	}

	// Cursor blink and other input messages go to the focused field.
	if t := m.focused(); t.kind == targetInput && m.screen == screenForm {
		return m.updateInput(t.field, msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.focused()

	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.targets())
		return m, m.applyFocus()
	case "shift+tab", "up":
		n := len(m.targets())
		m.focus = (m.focus - 1 + n) % n
		return m, m.applyFocus()
	case "ctrl+s":
		return m.submit()
	case "ctrl+y":
		if m.generatedURL == "" {
			return m, nil
		}
		return m, copyCmd(m.deps.Clipboard, m.generatedURL)
	case "ctrl+l":
		if m.generatedURL == "" {
			return m, nil
		}
		return m.openLogs()
	case "enter":
		if cur.kind == targetSubmit {
			return m.submit()
		}
		m.focus = (m.focus + 1) % len(m.targets())
		return m, m.applyFocus()
	}

	if cur.kind == targetPicker {
		return m.updatePicker(msg)
	}
	if cur.kind == targetInput {
		return m.updateInput(cur.field, msg)
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.variantIndex()
	n := len(m.variants)

	switch key := msg.String(); key {
	case "left", "h":
		if idx < 0 {
			idx = 0
		} else {
			idx = (idx - 1 + n) % n
		}
	case "right", "l", " ":
		idx = (idx + 1) % n
	default:
		if len(key) != 1 || key[0] < '1' || int(key[0]-'0') > n {
			return m, nil
		}
		idx = int(key[0] - '1')
	}

	if err := m.builder.SelectVariant(m.variants[idx].Name); err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.logger.WithField("variant", m.variants[idx].Name).Debug("variant_selected")
	return m, m.applyFocus()
}

func (m Model) updateInput(f simulation.Field, msg tea.Msg) (tea.Model, tea.Cmd) {
	i := m.inputIndex(f)
	if i < 0 {
		return m, nil
	}
	before := m.inputs[i].Value()

	var cmd tea.Cmd
	m.inputs[i], cmd = m.inputs[i].Update(msg)

	if value := m.inputs[i].Value(); value != before {
		if err := m.builder.SetField(string(f), value); err != nil {
			var invalid *simulation.InvalidFieldValueError
			if errors.As(err, &invalid) {
				m.fieldErrs[f] = invalid.Reason
			} else {
				m.fieldErrs[f] = err.Error()
			}
		} else {
			delete(m.fieldErrs, f)
		}
	}
	return m, cmd
}

// submit validates what the form can see, then hands the payload to a command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if strings.TrimSpace(m.builder.Config().URL) == "" {
		m.setError("URL is required.")
		m.focus = 0
		return m, m.applyFocus()
	}

	payload, err := m.builder.BuildPayload()
	if errors.Is(err, simulation.ErrNoVariantSelected) {
		m.alert = NoVariantAlert
		return m, nil
	}
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}

	for _, fv := range payload.Fields {
		if reason, ok := m.fieldErrs[fv.Name]; ok {
			m.setError(fmt.Sprintf("Fix %s before submitting: %s", fieldLabel(fv.Name), reason))
			return m, nil
		}
	}

	m.submitting = true
	m.setStatus("Submitting…")
	return m, tea.Batch(m.spinner.Tick, submitCmd(m.deps.Submitter, payload))
}

func (m Model) openLogs() (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.screen = screenLogs
		return m, nil
	}

	s := logstream.NewSession(
		m.deps.Dialer,
		m.deps.LogURL,
		logstream.WithLogger(m.deps.Logger),
		logstream.WithArchive(m.deps.Archive),
	)
	ctx, cancel := context.WithCancel(m.ctx)

	m.screen = screenLogs
	m.session = s
	m.sessionCancel = cancel
	m.feedSeen = 0
	m.logLines = nil
	m.viewport.SetContent("")
	m.setStatus("Connecting to log stream…")
	return m, openSessionCmd(ctx, s)
}

func (m Model) updateLogs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		s, cancel := m.session, m.sessionCancel
		m.session = nil
		m.sessionCancel = nil
		m.screen = screenForm
		m.setStatus("")
		return m, closeSessionCmd(s, cancel)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// syncFeed appends entries the view has not rendered yet.
func (m *Model) syncFeed() {
	if m.session == nil {
		return
	}
	entries := m.session.FeedSince(m.feedSeen)
	if len(entries) == 0 {
		return
	}
	follow := m.viewport.AtBottom()
	for _, e := range entries {
		m.logLines = append(m.logLines, formatLogLine(e.Text))
	}
	m.feedSeen += len(entries)
	m.viewport.SetContent(strings.Join(m.logLines, "\n"))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func formatLogLine(text string) string {
	return "> " + text
}

func closedStatus(s *logstream.Session) string {
	switch s.Reason() {
	case logstream.ReasonRemoteClose:
		return "Log stream closed by server."
	case logstream.ReasonReadError:
		return fmt.Sprintf("Log stream lost: %v", s.Err())
	case logstream.ReasonDialFailed:
		return fmt.Sprintf("Could not connect to log stream: %v", s.Err())
	default:
		return "Log stream closed."
	}
}

func variantTitle(v simulation.Variant) string {
	if spec, err := simulation.Lookup(v); err == nil {
		return spec.Title
	}
	return string(v)
}

func fieldLabel(f simulation.Field) string {
	if spec, ok := simulation.LookupField(f); ok {
		return spec.Label
	}
	return string(f)
}
