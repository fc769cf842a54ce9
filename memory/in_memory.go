package memory

import (
	"context"
	"sync"

	"github.com/harshapalnati/agno/core"
)

// InMemoryStore is a volatile Store keeping transcripts in a process-local
// map. It is safe for concurrent use and best suited for tests, ephemeral
// demo servers and agents that do not need persistence.
//
// Appends to one session are serialized through a per-session mutex so
// concurrent writers produce a single total order; appends to distinct
// sessions never contend on the same lock.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
}

type sessionLog struct {
	mu       sync.Mutex
	messages []core.Message
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*sessionLog)}
}

// Append adds msg to the session transcript, creating the session on first use.
func (s *InMemoryStore) Append(_ context.Context, sessionID string, msg core.Message) error {
	log := s.session(sessionID)
	log.mu.Lock()
	defer log.mu.Unlock()
	log.messages = append(log.messages, msg)
	return nil
}

// Read returns a defensive copy of the session transcript in append order.
// Reading an unknown session yields an empty transcript, not an error.
func (s *InMemoryStore) Read(_ context.Context, sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	log, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	out := make([]core.Message, len(log.messages))
	copy(out, log.messages)
	return out, nil
}

// Clear evicts the session and its transcript.
func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// session returns the log for sessionID, creating it lazily.
func (s *InMemoryStore) session(sessionID string) *sessionLog {
	s.mu.RLock()
	log, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.sessions[sessionID]; ok {
		return log
	}
	log = &sessionLog{}
	s.sessions[sessionID] = log
	return log
}

var _ Store = (*InMemoryStore)(nil)
