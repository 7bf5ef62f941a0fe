package transcript

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sampleTranscript(id string, closedAt time.Time, lines ...string) Transcript {
	t := Transcript{
		SessionID: id,
		Endpoint:  "ws://proxy.test/ws/logs",
		OpenedAt:  closedAt.Add(-time.Minute),
		ClosedAt:  closedAt,
		Reason:    "local_close",
		Entries:   []Entry{},
	}
	for i, line := range lines {
		t.Entries = append(t.Entries, Entry{
			Seq:        i + 1,
			Text:       line,
			ReceivedAt: closedAt.Add(-time.Duration(len(lines)-i) * time.Second),
		})
	}
	return t
}

// RunStoreTests runs the shared suite against a Store implementation.
func RunStoreTests(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save and Recent", func(t *testing.T) {
		first := sampleTranscript("s-1", base, "Client connected to WebSocket for logs.", "Playlist request count: 1")
		second := sampleTranscript("s-2", base.Add(time.Hour), "Triggering segment failure.")

		if err := store.Save(ctx, first); err != nil {
			t.Fatalf("Save(first) error = %v", err)
		}
		if err := store.Save(ctx, second); err != nil {
			t.Fatalf("Save(second) error = %v", err)
		}

		got, err := store.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Recent() returned %d transcripts, want 2", len(got))
		}
		if got[0].SessionID != "s-2" || got[1].SessionID != "s-1" {
			t.Errorf("order = [%s %s], want [s-2 s-1]", got[0].SessionID, got[1].SessionID)
		}

		older := got[1]
		if len(older.Entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(older.Entries))
		}
		for i, e := range older.Entries {
			if e.Seq != i+1 || e.Text != first.Entries[i].Text {
				t.Errorf("entry %d = %+v, want %+v", i, e, first.Entries[i])
			}
			if !e.ReceivedAt.Equal(first.Entries[i].ReceivedAt) {
				t.Errorf("entry %d received_at = %v, want %v", i, e.ReceivedAt, first.Entries[i].ReceivedAt)
			}
		}
		if !older.ClosedAt.Equal(first.ClosedAt) || older.Reason != first.Reason || older.Endpoint != first.Endpoint {
			t.Errorf("transcript metadata = %+v, want %+v", older, first)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		got, err := store.Recent(ctx, 1)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("Recent(1) returned %d transcripts", len(got))
		}
	})

	t.Run("Empty feed", func(t *testing.T) {
		empty := sampleTranscript("s-empty", base.Add(2*time.Hour))
		if err := store.Save(ctx, empty); err != nil {
			t.Fatalf("Save(empty) error = %v", err)
		}
		got, err := store.Recent(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got[0].SessionID != "s-empty" || len(got[0].Entries) != 0 {
			t.Errorf("got %+v, want empty transcript s-empty", got[0])
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamsim.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	RunStoreTests(t, store)

	// Duplicate session IDs are rejected rather than silently merged.
	dup := sampleTranscript("s-1", time.Now())
	if err := store.Save(context.Background(), dup); err == nil {
		t.Error("expected error saving duplicate session id")
	}
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, 0)
	defer store.Close()

	RunStoreTests(t, store)
}

func TestRedisStore_EvictsBeyondCap(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 2)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tr := sampleTranscript(fmt.Sprintf("s-%d", i), time.Now(), "line")
		if err := store.Save(ctx, tr); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d, want 2", len(got))
	}
	if mr.Exists("streamsim:transcript:s-0") {
		t.Error("oldest transcript was not evicted")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendOff})
	if err != nil || s != nil {
		t.Errorf("Open(off) = %v, %v; want nil, nil", s, err)
	}

	s, err = Open(ctx, Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "t.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	s.Close()

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Backend: BackendRedis, RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("Open(redis) error = %v", err)
	}
	s.Close()

	if _, err := Open(ctx, Options{Backend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
