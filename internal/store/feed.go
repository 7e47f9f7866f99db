package store

import (
	"sync"

	"github.com/fishbowlhq/go-server/internal/game"
)

// feed is the in-process change feed shared by the store implementations:
// a per-room registry of subscriber callbacks.
type feed struct {
	mu   sync.Mutex
	subs map[string]map[int]func(*game.Session)
	next int
}

func newFeed() *feed {
	return &feed{subs: make(map[string]map[int]func(*game.Session))}
}

func (f *feed) subscribe(code string, onChange func(*game.Session)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[code] == nil {
		f.subs[code] = make(map[int]func(*game.Session))
	}
	id := f.next
	f.next++
	f.subs[code][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[code], id)
			if len(f.subs[code]) == 0 {
				delete(f.subs, code)
			}
		})
	}
}

// publish delivers doc to every subscriber of the room. Each callback gets
// its own clone; delivery happens outside the registry lock so a slow
// subscriber cannot block new subscriptions. A nil doc means deletion.
func (f *feed) publish(code string, doc *game.Session) {
	f.mu.Lock()
	targets := make([]func(*game.Session), 0, len(f.subs[code]))
	for _, fn := range f.subs[code] {
		targets = append(targets, fn)
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(doc.Clone())
	}
}
