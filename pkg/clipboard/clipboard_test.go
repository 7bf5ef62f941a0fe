package clipboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rmax-ai/streamsim/pkg/metrics"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recorder) write(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.texts = append(r.texts, text)
	return nil
}

func TestHelper_CopySetsIndicatorThenReverts(t *testing.T) {
	rec := &recorder{}
	h := NewHelper(WithWriter(rec.write), WithWindow(50*time.Millisecond))

	if h.Copied() {
		t.Fatal("Copied() = true before any copy")
	}
	if err := h.Copy("https://proxy.test/stream/uid_abc"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if !h.Copied() {
		t.Error("Copied() = false right after copy")
	}
	if len(rec.texts) != 1 || rec.texts[0] != "https://proxy.test/stream/uid_abc" {
		t.Errorf("clipboard got %v", rec.texts)
	}

	time.Sleep(150 * time.Millisecond)
	if h.Copied() {
		t.Error("Copied() still true after the window")
	}
}

func TestHelper_RecopyRestartsWindow(t *testing.T) {
	rec := &recorder{}
	h := NewHelper(WithWriter(rec.write), WithWindow(100*time.Millisecond))

	h.Copy("a")
	time.Sleep(60 * time.Millisecond)
	h.Copy("b")
	time.Sleep(60 * time.Millisecond)

	// 120ms after the first copy but only 60ms after the second.
	if !h.Copied() {
		t.Error("Copied() = false, want the second copy to restart the window")
	}

	time.Sleep(150 * time.Millisecond)
	if h.Copied() {
		t.Error("Copied() still true after the restarted window")
	}
}

func TestHelper_CopyFailure(t *testing.T) {
	rec := &recorder{err: errors.New("no clipboard utility")}
	h := NewHelper(WithWriter(rec.write))

	before := testutil.ToFloat64(metrics.ClipboardCopiesTotal.WithLabelValues("error"))
	err := h.Copy("x")

	var clipErr *ClipboardError
	if !errors.As(err, &clipErr) {
		t.Fatalf("Copy() error = %v, want *ClipboardError", err)
	}
	if !errors.Is(err, rec.err) {
		t.Error("ClipboardError does not unwrap to the writer error")
	}
	if h.Copied() {
		t.Error("Copied() = true after a failed copy")
	}
	if got := testutil.ToFloat64(metrics.ClipboardCopiesTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}

func TestHelper_OnChange(t *testing.T) {
	changes := make(chan bool, 4)
	h := NewHelper(
		WithWriter((&recorder{}).write),
		WithWindow(20*time.Millisecond),
		OnChange(func(copied bool) { changes <- copied }),
	)

	h.Copy("x")
	for _, want := range []bool{true, false} {
		select {
		case got := <-changes:
			if got != want {
				t.Errorf("change = %v, want %v", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no change notification, want %v", want)
		}
	}
}

func TestHelper_Stop(t *testing.T) {
	h := NewHelper(WithWriter((&recorder{}).write), WithWindow(time.Hour))
	h.Copy("x")
	h.Stop()
	if h.Copied() {
		t.Error("Copied() = true after Stop")
	}
}
