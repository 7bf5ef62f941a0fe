package transcript

import (
	"context"
	"fmt"
	"time"
)

// Entry is one archived log line.
type Entry struct {
	Seq        int       `json:"seq"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Transcript is the frozen feed of a closed log session.
type Transcript struct {
	SessionID string    `json:"session_id"`
	Endpoint  string    `json:"endpoint"`
	OpenedAt  time.Time `json:"opened_at"`
	ClosedAt  time.Time `json:"closed_at"`
	Reason    string    `json:"reason"`
	Entries   []Entry   `json:"entries"`
}

// Store archives transcripts of closed log sessions.
type Store interface {
	Save(ctx context.Context, t Transcript) error
	// Recent returns up to limit transcripts, most recently closed first.
	Recent(ctx context.Context, limit int) ([]Transcript, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendOff    = "off"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	SQLitePath string
	RedisAddr  string
	// MaxTranscripts caps how many transcripts the Redis index keeps.
	MaxTranscripts int
}

// Open creates the store named by opts.Backend. It returns a nil Store for
// BackendOff.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendOff:
		return nil, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := NewRedisStoreFromAddr(ctx, opts.RedisAddr, opts.MaxTranscripts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown transcript backend: %s", opts.Backend)
	}
}
