// internal/store/memory.go
//
// In-memory implementation of the SessionStore interface. Used for
// ephemeral rooms, development, and tests; state is lost on restart.
//
// Characteristics:
//   - Documents keyed by room code in a map, concurrency-safe via RWMutex.
//   - Every Put/Get hands out deep copies, so two clients that read the
//     same revision hold independent state (matching the behavior of a
//     remote document store).
//   - Writes are last-writer-wins whole-document replacements.

package store

import (
	"context"
	"sync"

	"github.com/fishbowlhq/go-server/internal/game"
)

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	feed     *feed
}

// NewMemoryStore constructs a new in-memory SessionStore.
func NewMemoryStore() SessionStore {
	return &memory{
		sessions: make(map[string]*game.Session),
		feed:     newFeed(),
	}
}

func (m *memory) Put(ctx context.Context, s *game.Session) error {
	doc := s.Clone()
	m.mu.Lock()
	m.sessions[doc.Code] = doc
	m.mu.Unlock()

	m.feed.publish(doc.Code, doc)
	return nil
}

func (m *memory) Get(ctx context.Context, code string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[code]; ok {
		return s.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	_, ok := m.sessions[code]
	delete(m.sessions, code)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.feed.publish(code, nil)
	return nil
}

func (m *memory) Subscribe(code string, onChange func(*game.Session)) (cancel func()) {
	return m.feed.subscribe(code, onChange)
}
