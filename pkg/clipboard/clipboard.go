package clipboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/metrics"
)

// DefaultCopiedWindow is how long Copied reports true after a copy.
const DefaultCopiedWindow = 2 * time.Second

// Writer puts text on the system clipboard.
type Writer func(text string) error

// ClipboardError reports a failed clipboard write.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("clipboard write failed: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// Helper copies text and tracks the transient "copied" indicator.
type Helper struct {
	write  Writer
	window time.Duration
	logger *logrus.Entry

	mu         sync.Mutex
	copied     bool
	generation uint64
	timer      *time.Timer
	onChange   func(bool)
}

// Option customizes a Helper.
type Option func(*Helper)

// WithWriter replaces the system clipboard writer.
func WithWriter(w Writer) Option {
	return func(h *Helper) {
		if w != nil {
			h.write = w
		}
	}
}

// WithWindow overrides how long the indicator stays on.
func WithWindow(d time.Duration) Option {
	return func(h *Helper) {
		if d > 0 {
			h.window = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Helper) {
		if l != nil {
			h.logger = logging.WithComponent(l, "clipboard")
		}
	}
}

// OnChange registers a callback invoked whenever the indicator flips.
// It runs outside the helper's lock.
func OnChange(fn func(copied bool)) Option {
	return func(h *Helper) {
		h.onChange = fn
	}
}

// NewHelper creates a Helper backed by the system clipboard.
func NewHelper(opts ...Option) *Helper {
	h := &Helper{
		write:  clipboard.WriteAll,
		window: DefaultCopiedWindow,
		logger: logging.WithComponent(logging.Discard(), "clipboard"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Unsupported reports whether the platform has no clipboard utility.
func Unsupported() bool {
	return clipboard.Unsupported
}

// Copy writes text to the clipboard. On success the indicator turns on for
// the copied window; copying again restarts the window. A failure leaves
// the indicator untouched.
func (h *Helper) Copy(text string) error {
	if err := h.write(text); err != nil {
		metrics.ClipboardCopiesTotal.WithLabelValues("error").Inc()
		h.logger.WithError(err).Warn("clipboard_copy_failed")
		return &ClipboardError{Err: err}
	}
	metrics.ClipboardCopiesTotal.WithLabelValues("ok").Inc()

	h.mu.Lock()
	h.generation++
	gen := h.generation
	if h.timer != nil {
		h.timer.Stop()
	}
	h.copied = true
	h.timer = time.AfterFunc(h.window, func() { h.expire(gen) })
	notify := h.onChange
	h.mu.Unlock()

	h.logger.WithField("length", len(text)).Debug("clipboard_copied")
	if notify != nil {
		notify(true)
	}
	return nil
}

func (h *Helper) expire(gen uint64) {
	h.mu.Lock()
	if gen != h.generation || !h.copied {
		// A newer copy owns the indicator.
		h.mu.Unlock()
		return
	}
	h.copied = false
	h.timer = nil
	notify := h.onChange
	h.mu.Unlock()

	if notify != nil {
		notify(false)
	}
}

// Window returns how long the indicator stays on after a copy.
func (h *Helper) Window() time.Duration {
	return h.window
}

// Copied reports whether a copy succeeded within the window.
func (h *Helper) Copied() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copied
}

// Stop cancels a pending revert and clears the indicator.
func (h *Helper) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.generation++
	h.copied = false
}
