package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmax-ai/streamsim/pkg/clipboard"
	"github.com/rmax-ai/streamsim/pkg/logstream"
	"github.com/rmax-ai/streamsim/pkg/simulation"
)

// submitCmd posts the payload. Once issued the submission is not cancelled;
// the client's HTTP timeout bounds it.
func submitCmd(sub Submitter, payload simulation.Payload) tea.Cmd {
	return func() tea.Msg {
		url, err := sub.Submit(context.Background(), payload)
		return submitResultMsg{variant: payload.Simulate, url: url, err: err}
	}
}

func copyCmd(h *clipboard.Helper, text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: h.Copy(text)}
	}
}

// expireCopyCmd wakes the view after the copied window so the indicator
// is redrawn once the helper has reverted it.
func expireCopyCmd(window time.Duration) tea.Cmd {
	return tea.Tick(window+50*time.Millisecond, func(time.Time) tea.Msg {
		return copyExpiredMsg{}
	})
}

func openSessionCmd(ctx context.Context, s *logstream.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionOpenedMsg{session: s, err: s.Open(ctx)}
	}
}

// waitForActivity blocks until the session's feed grows or it closes.
func waitForActivity(s *logstream.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.Changed():
		case <-s.Done():
		}
		return sessionActivityMsg{session: s}
	}
}

// closeSessionCmd releases the session off the UI loop. The context is
// cancelled after Close so the recorded reason is a local close.
func closeSessionCmd(s *logstream.Session, cancel context.CancelFunc) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		_ = s.Close()
		if cancel != nil {
			cancel()
		}
		return sessionReleasedMsg{session: s}
	}
}
