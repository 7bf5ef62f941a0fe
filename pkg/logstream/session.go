package logstream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/metrics"
	"github.com/rmax-ai/streamsim/pkg/transcript"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// End reasons recorded when a session closes.
const (
	ReasonLocalClose  = "local_close"
	ReasonRemoteClose = "remote_close"
	ReasonReadError   = "read_error"
	ReasonCancelled   = "cancelled"
	ReasonDialFailed  = "dial_failed"
)

const archiveTimeout = 5 * time.Second

// ErrSessionReused is returned by Open on a session that was already opened.
// A new viewing interaction must construct a new Session.
var ErrSessionReused = errors.New("log session already used")

// Entry is one received frame and its arrival order.
type Entry struct {
	Seq        int
	Text       string
	ReceivedAt time.Time
}

// Session owns one log connection for the lifetime of a log view:
// Idle -> Open -> Closed. Every exit path converges on teardown, which runs
// once and releases the connection.
type Session struct {
	id      string
	url     string
	dialer  Dialer
	logger  *logrus.Entry
	archive transcript.Store

	mu        sync.Mutex
	state     State
	dialing   bool
	abandoned bool
	conn      Conn
	feed      []Entry
	openedAt  time.Time
	closedAt  time.Time
	reason    string
	err       error
	stopWatch func() bool

	teardownOnce sync.Once
	changed      chan struct{}
	done         chan struct{}
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the diagnostic logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = logging.WithComponent(l, "logstream")
		}
	}
}

// WithArchive stores the frozen feed when the session closes.
func WithArchive(store transcript.Store) Option {
	return func(s *Session) {
		s.archive = store
	}
}

// NewSession creates an Idle session for url.
func NewSession(dialer Dialer, url string, opts ...Option) *Session {
	if dialer == nil {
		dialer = WebSocketDialer{}
	}
	s := &Session{
		id:      uuid.NewString(),
		url:     url,
		dialer:  dialer,
		logger:  logging.WithComponent(logging.Discard(), "logstream"),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("session_id", s.id)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// URL returns the log endpoint.
func (s *Session) URL() string { return s.url }

// Open dials the log endpoint and starts receiving frames. Cancelling ctx
// later closes the session.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle || s.dialing {
		s.mu.Unlock()
		return ErrSessionReused
	}
	s.dialing = true
	s.mu.Unlock()

	conn, err := s.dialer.Dial(ctx, s.url)

	s.mu.Lock()
	s.dialing = false
	if err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Warn("log_stream_dial_failed")
		s.teardown(ReasonDialFailed, err)
		return err
	}
	s.conn = conn
	if s.abandoned {
		// The view was dismissed while dialing.
		s.mu.Unlock()
		s.teardown(ReasonLocalClose, nil)
		return nil
	}
	s.state = StateOpen
	s.openedAt = time.Now()
	metrics.LogSessionsOpen.Inc()
	s.stopWatch = context.AfterFunc(ctx, func() {
		s.teardown(ReasonCancelled, ctx.Err())
	})
	s.mu.Unlock()

	s.logger.WithField("url", s.url).Info("log_session_opened")

	go s.readLoop(conn)
	return nil
}

// Close releases the connection. It is a no-op on an Idle or Closed session.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.dialing {
		s.abandoned = true
		s.mu.Unlock()
		return nil
	}
	if s.state != StateOpen {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.teardown(ReasonLocalClose, nil)
	return nil
}

func (s *Session) readLoop(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.handleReadError(err)
			return
		}
		s.deliver(string(data))
	}
}

func (s *Session) handleReadError(err error) {
	if s.State() == StateClosed {
		// Our own teardown closed the connection.
		return
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		s.teardown(ReasonRemoteClose, err)
		return
	}
	s.teardown(ReasonReadError, err)
}

// deliver appends one frame to the feed. Frames arriving outside the Open
// state are discarded.
func (s *Session) deliver(text string) bool {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return false
	}
	s.feed = append(s.feed, Entry{
		Seq:        len(s.feed) + 1,
		Text:       text,
		ReceivedAt: time.Now(),
	})
	s.mu.Unlock()

	metrics.LogFramesTotal.Inc()
	s.notify()
	return true
}

func (s *Session) teardown(reason string, cause error) {
	s.teardownOnce.Do(func() {
		s.mu.Lock()
		wasOpen := s.state == StateOpen
		s.state = StateClosed
		s.reason = reason
		s.err = cause
		s.closedAt = time.Now()
		conn := s.conn
		stop := s.stopWatch
		feed := append([]Entry(nil), s.feed...)
		s.mu.Unlock()

		if stop != nil {
			stop()
		}
		if conn != nil {
			if err := conn.Close(); err != nil {
				s.logger.WithError(err).Debug("log_connection_close_error")
			}
		}

		if wasOpen {
			metrics.LogSessionsOpen.Dec()
		}
		metrics.LogSessionsTotal.WithLabelValues(reason).Inc()

		entry := s.logger.WithFields(logging.Fields{
			"reason":  reason,
			"entries": len(feed),
		})
		if cause != nil {
			entry = entry.WithError(cause)
		}
		entry.Info("log_session_closed")

		close(s.done)
		s.notify()

		if wasOpen {
			s.archiveFeed(reason, feed)
		}
	})
}

func (s *Session) archiveFeed(reason string, feed []Entry) {
	if s.archive == nil {
		return
	}
	s.mu.Lock()
	t := transcript.Transcript{
		SessionID: s.id,
		Endpoint:  s.url,
		OpenedAt:  s.openedAt,
		ClosedAt:  s.closedAt,
		Reason:    reason,
		Entries:   make([]transcript.Entry, len(feed)),
	}
	s.mu.Unlock()
	for i, e := range feed {
		t.Entries[i] = transcript.Entry(e)
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := s.archive.Save(ctx, t); err != nil {
		s.logger.WithError(err).Warn("transcript_archive_failed")
	}
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Feed returns a copy of every entry received so far, in arrival order.
func (s *Session) Feed() []Entry {
	return s.FeedSince(0)
}

// FeedSince returns a copy of the entries after the first n.
func (s *Session) FeedSince(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(s.feed) {
		return nil
	}
	return append([]Entry(nil), s.feed[n:]...)
}

// Len returns the number of entries in the feed.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feed)
}

// Reason reports why the session closed; empty while not Closed.
func (s *Session) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Err returns the error that ended the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Changed signals that the feed grew or the state changed. Signals coalesce.
func (s *Session) Changed() <-chan struct{} { return s.changed }

// Done is closed once the connection has been released.
func (s *Session) Done() <-chan struct{} { return s.done }
