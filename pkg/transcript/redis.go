package transcript

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	transcriptIndex = "streamsim:transcripts"

	// DefaultMaxTranscripts is how many transcripts the index keeps by default.
	DefaultMaxTranscripts = 100
)

// RedisStore keeps transcripts as JSON values indexed by a capped list.
type RedisStore struct {
	client *redis.Client
	max    int
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, maxTranscripts int) *RedisStore {
	if maxTranscripts <= 0 {
		maxTranscripts = DefaultMaxTranscripts
	}
	return &RedisStore{client: client, max: maxTranscripts}
}

// NewRedisStoreFromAddr dials addr and verifies the server answers.
func NewRedisStoreFromAddr(ctx context.Context, addr string, maxTranscripts int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return NewRedisStore(client, maxTranscripts), nil
}

func (s *RedisStore) makeKey(sessionID string) string {
	return fmt.Sprintf("streamsim:transcript:%s", sessionID)
}

// Save stores the transcript and evicts the oldest beyond the cap.
func (s *RedisStore) Save(ctx context.Context, t Transcript) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript %s: %w", t.SessionID, err)
	}

	key := s.makeKey(t.SessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.LPush(ctx, transcriptIndex, t.SessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store transcript %s: %w", t.SessionID, err)
	}

	evicted, err := s.client.LRange(ctx, transcriptIndex, int64(s.max), -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read transcript index: %w", err)
	}
	if len(evicted) == 0 {
		return nil
	}
	keys := make([]string, len(evicted))
	for i, id := range evicted {
		keys[i] = s.makeKey(id)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict transcripts: %w", err)
	}
	return s.client.LTrim(ctx, transcriptIndex, 0, int64(s.max-1)).Err()
}

// Recent returns up to limit transcripts, most recently saved first.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]Transcript, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.client.LRange(ctx, transcriptIndex, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript index: %w", err)
	}
	if len(ids) == 0 {
		return []Transcript{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.makeKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to MGET transcripts: %w", err)
	}

	out := make([]Transcript, 0, len(values))
	for i, val := range values {
		if val == nil {
			continue
		}
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("MGET returned non-string for key %s", keys[i])
		}
		var t Transcript
		if err := json.Unmarshal([]byte(str), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript %s: %w", keys[i], err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
