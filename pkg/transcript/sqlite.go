package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps transcripts in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
// It enables WAL mode for concurrency and durability.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	// Timestamps are unix nanoseconds so ordering never depends on driver
	// time formatting.
	query := `
	CREATE TABLE IF NOT EXISTS transcripts (
		session_id TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL,
		opened_at INTEGER NOT NULL,
		closed_at INTEGER NOT NULL,
		reason TEXT NOT NULL,
		entry_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transcripts_closed_at ON transcripts(closed_at);

	CREATE TABLE IF NOT EXISTS transcript_entries (
		session_id TEXT NOT NULL REFERENCES transcripts(session_id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		text TEXT NOT NULL,
		received_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create transcript tables: %w", err)
	}
	return nil
}

// Save writes the transcript and its entries in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, t Transcript) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transcripts (session_id, endpoint, opened_at, closed_at, reason, entry_count) VALUES (?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Endpoint, t.OpenedAt.UnixNano(), t.ClosedAt.UnixNano(), t.Reason, len(t.Entries),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcript %s: %w", t.SessionID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transcript_entries (session_id, seq, text, received_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range t.Entries {
		if _, err := stmt.ExecContext(ctx, t.SessionID, e.Seq, e.Text, e.ReceivedAt.UnixNano()); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", e.Seq, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit transcripts, most recently closed first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Transcript, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, endpoint, opened_at, closed_at, reason FROM transcripts ORDER BY closed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}

	var out []Transcript
	for rows.Next() {
		var t Transcript
		var opened, closed int64
		if err := rows.Scan(&t.SessionID, &t.Endpoint, &opened, &closed, &t.Reason); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		t.OpenedAt = time.Unix(0, opened).UTC()
		t.ClosedAt = time.Unix(0, closed).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		entries, err := s.entries(ctx, out[i].SessionID)
		if err != nil {
			return nil, err
		}
		out[i].Entries = entries
	}
	return out, nil
}

func (s *SQLiteStore) entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, text, received_at FROM transcript_entries WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for %s: %w", sessionID, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var received int64
		if err := rows.Scan(&e.Seq, &e.Text, &received); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.ReceivedAt = time.Unix(0, received).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
