package console

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/clipboard"
	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/logstream"
	"github.com/rmax-ai/streamsim/pkg/simulation"
	"github.com/rmax-ai/streamsim/pkg/transcript"
)

// NoVariantAlert is shown when a submission is attempted before a variant is picked.
const NoVariantAlert = "Please select a simulation type before starting the simulation."

const (
	defaultWidth   = 100
	viewportHeight = 20
)

// Submitter sends a payload to the proxy and returns the playback URL.
type Submitter interface {
	Submit(ctx context.Context, payload simulation.Payload) (string, error)
}

// Deps are the collaborators the console drives.
type Deps struct {
	Submitter Submitter
	Dialer    logstream.Dialer
	LogURL    string
	Clipboard *clipboard.Helper
	Archive   transcript.Store
	Logger    logrus.FieldLogger
}

type screen int

const (
	screenForm screen = iota
	screenLogs
)

type targetKind int

const (
	targetInput targetKind = iota
	targetPicker
	targetSubmit
)

// target is one focusable element of the form.
type target struct {
	kind  targetKind
	field simulation.Field
}

// Messages

type submitResultMsg struct {
	variant simulation.Variant
	url     string
	err     error
}

type copyResultMsg struct {
	err error
}

type copyExpiredMsg struct{}

type sessionOpenedMsg struct {
	session *logstream.Session
	err     error
}

type sessionActivityMsg struct {
	session *logstream.Session
}

type sessionReleasedMsg struct {
	session *logstream.Session
}

// Model is the console's bubbletea model.
type Model struct {
	ctx     context.Context
	deps    Deps
	logger  *logrus.Entry
	builder *simulation.Builder

	variants  []simulation.VariantSpec
	fields    []simulation.FieldSpec
	inputs    []textinput.Model
	fieldErrs map[simulation.Field]string
	focus     int

	spinner    spinner.Model
	submitting bool
	status     string
	statusErr  bool
	alert      string

	generatedURL string

	screen        screen
	session       *logstream.Session
	sessionCancel context.CancelFunc
	feedSeen      int
	logLines      []string
	viewport      viewport.Model

	width  int
	height int
}

// New builds the initial model. ctx bounds every log session the console opens.
func New(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.NewHelper(clipboard.WithLogger(deps.Logger))
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	vp := viewport.New(defaultWidth, viewportHeight)

	builder := simulation.NewBuilder()
	cfg := builder.Config()

	fields := simulation.SharedFields()
	inputs := make([]textinput.Model, len(fields))
	for i, spec := range fields {
		ti := textinput.New()
		ti.Placeholder = spec.Placeholder
		ti.Prompt = "› "
		ti.Width = 60
		if spec.Kind == simulation.KindInt {
			ti.CharLimit = 9
			ti.Width = 12
		}
		if v, ok := cfg.Value(spec.Name); ok && spec.Kind != simulation.KindString {
			ti.SetValue(fmt.Sprint(v))
		}
		inputs[i] = ti
	}

	m := Model{
		ctx:       ctx,
		deps:      deps,
		logger:    logging.WithComponent(deps.Logger, "console"),
		builder:   builder,
		variants:  simulation.Variants(),
		fields:    fields,
		inputs:    inputs,
		fieldErrs: make(map[simulation.Field]string),
		spinner:   s,
		viewport:  vp,
		width:     defaultWidth,
	}
	m.applyFocus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// targets lists the focusable elements in tab order. Only the selected
// variant's fields are shown, so the list changes with the variant.
func (m Model) targets() []target {
	out := []target{
		{kind: targetInput, field: simulation.FieldURL},
		{kind: targetPicker},
	}
	if v := m.builder.Variant(); v != "" {
		fields, _ := simulation.RequiredFields(v)
		for _, f := range fields {
			out = append(out, target{kind: targetInput, field: f})
		}
	}
	return append(out, target{kind: targetSubmit})
}

func (m Model) focused() target {
	ts := m.targets()
	if m.focus < 0 || m.focus >= len(ts) {
		return ts[0]
	}
	return ts[m.focus]
}

func (m Model) inputIndex(f simulation.Field) int {
	for i, spec := range m.fields {
		if spec.Name == f {
			return i
		}
	}
	return -1
}

// applyFocus clamps the focus index and focuses the matching input.
func (m *Model) applyFocus() tea.Cmd {
	ts := m.targets()
	if m.focus >= len(ts) {
		m.focus = len(ts) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}

	var cmd tea.Cmd
	cur := ts[m.focus]
	for i := range m.inputs {
		if cur.kind == targetInput && m.fields[i].Name == cur.field {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m Model) variantIndex() int {
	current := m.builder.Variant()
	for i, spec := range m.variants {
		if spec.Name == current {
			return i
		}
	}
	return -1
}

// Builder exposes the form state, mainly for tests and the shutdown path.
func (m Model) Builder() *simulation.Builder { return m.builder }

// GeneratedURL returns the last playback URL returned by the proxy.
func (m Model) GeneratedURL() string { return m.generatedURL }

// Session returns the log session held by the log view, if any.
func (m Model) Session() *logstream.Session { return m.session }
