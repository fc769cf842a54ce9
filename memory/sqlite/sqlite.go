// Package sqlite provides a durable memory.Store backed by SQLite. Append
// commits the row before returning, so a crash mid-loop leaves a consistent
// partial transcript that survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/memory"
)

// Store is a durable memory.Store. One Store may hold any number of
// sessions; messages carry a monotonically increasing rowid per table, which
// combined with the per-session write lock yields a strict total append
// order per session id.
type Store struct {
	db   *sql.DB
	path string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-session write serialization
}

// New opens (or creates) the database at path. Pass ":memory:" for an
// ephemeral database, mainly useful in tests.
func New(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}

	// WAL keeps readers from blocking the single writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		tool_name  TEXT NOT NULL DEFAULT '',
		tool_args  TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, path: path, locks: make(map[string]*sync.Mutex)}, nil
}

// Append persists msg before returning. Success implies durability.
func (s *Store) Append(ctx context.Context, sessionID string, msg core.Message) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, tool_name, tool_args, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, string(msg.Role), msg.Content, msg.ToolName, msg.ToolArgs, ts.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append message to session %q: %w", sessionID, err)
	}
	return nil
}

// Read returns the session transcript in strict append order.
func (s *Store) Read(ctx context.Context, sessionID string) ([]core.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, tool_name, tool_args, created_at
		 FROM messages WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("read session %q: %w", sessionID, err)
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var (
			role, content, toolName, toolArgs, createdAt string
		)
		if err := rows.Scan(&role, &content, &toolName, &toolArgs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, createdAt)
		msgs = append(msgs, core.Message{
			Role:      core.Role(role),
			Content:   content,
			ToolName:  toolName,
			ToolArgs:  toolArgs,
			Timestamp: ts,
		})
	}
	return msgs, rows.Err()
}

// Clear deletes the session transcript.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session %q: %w", sessionID, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// sessionLock returns the write lock for sessionID, creating it lazily.
// Distinct sessions use distinct locks and never contend.
func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

var _ memory.Store = (*Store)(nil)
