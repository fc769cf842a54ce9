// Package memory defines the conversation memory capability and its volatile
// in-process implementation. A durable SQLite-backed implementation lives in
// the sqlite subpackage.
//
// A Store keeps one append-only transcript per session id. Implementations
// must serialize concurrent appends to the same session into one total
// order; distinct sessions never contend.
package memory

import (
	"context"

	"github.com/harshapalnati/agno/core"
)

// Store is the append/read capability behind an agent's conversation memory.
//
// Append must not return before the message is committed to the store's
// backing medium: for durable implementations success implies durability.
// Read returns messages in strict append order. Clear evicts the session.
type Store interface {
	Append(ctx context.Context, sessionID string, msg core.Message) error
	Read(ctx context.Context, sessionID string) ([]core.Message, error)
	Clear(ctx context.Context, sessionID string) error
}
