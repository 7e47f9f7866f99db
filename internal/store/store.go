// internal/store/store.go
//
// SessionStore is the shared-store contract the replicated controller is
// written against: durable storage for one session document per room code,
// plus a push-based change feed delivering the full updated document to
// every subscriber. Implementations may be backed by memory (development,
// tests) or SQLite (this package), and could be swapped for a store with
// revision-checked writes without touching the state machine.

package store

import (
	"context"
	"errors"

	"github.com/fishbowlhq/go-server/internal/game"
)

var (
	// ErrNotFound distinguishes a deleted or never-created room from a
	// transient failure, so clients can navigate away instead of retrying.
	ErrNotFound = errors.New("session not found")
)

// SessionStore persists session documents and notifies observers of writes.
//
// Writes are whole-document replacements: the store serializes concurrent
// writers in some order and the last write wins. Nothing here detects or
// merges conflicting writes; the application's single-actor convention is
// the only guard against lost updates.
type SessionStore interface {
	// Put stores the full document under its room code, replacing any
	// previous revision, and pushes the new value to all subscribers
	// (including the writer's own subscription).
	Put(ctx context.Context, s *game.Session) error

	// Get returns a copy of the current document, or ErrNotFound.
	Get(ctx context.Context, code string) (*game.Session, error)

	// Delete removes the document and pushes a nil value to subscribers.
	Delete(ctx context.Context, code string) error

	// Subscribe registers onChange for every write to the room's document.
	// The callback receives its own copy of the document, or nil when the
	// room is deleted. The returned cancel function removes the
	// subscription and is safe to call more than once.
	Subscribe(code string, onChange func(*game.Session)) (cancel func())
}
