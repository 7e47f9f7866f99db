// internal/game/local.go
//
// Local session controller: drives the state machine with a single
// in-process copy of the document and full local authority. Every
// transition applies synchronously; there is no replication and no
// concurrency. This mode also supports pausing the turn countdown,
// which the replicated mode deliberately does not share.

package game

import (
	"math/rand"
	"time"
)

// LocalOption customizes a Local controller.
type LocalOption func(*Local)

// WithClock substitutes the wall clock, for tests.
func WithClock(now func() time.Time) LocalOption {
	return func(l *Local) { l.now = now }
}

// WithShuffle substitutes the pool shuffler, for deterministic tests.
func WithShuffle(shuffle ShuffleFunc) LocalOption {
	return func(l *Local) { l.shuffle = shuffle }
}

// Local owns one session on one device.
type Local struct {
	s       *Session
	now     func() time.Time
	shuffle ShuffleFunc

	pausedAt  *time.Time
	pausedFor time.Duration
}

// NewLocal creates a single-device session from the collected teams and
// words.
func NewLocal(teams []Team, words []Word, roundSeconds int, opts ...LocalOption) (*Local, error) {
	l := &Local{
		now:     time.Now,
		shuffle: func(ids []string) { rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }) },
	}
	for _, opt := range opts {
		opt(l)
	}
	s, err := New("", "", teams, words, roundSeconds, l.shuffle)
	if err != nil {
		return nil, err
	}
	l.s = s
	return l, nil
}

// Session exposes the live document for queries. The caller owns no copy;
// mutations still go through the controller methods.
func (l *Local) Session() *Session { return l.s }

func (l *Local) StartTurn() error {
	if err := l.s.StartTurn(l.now()); err != nil {
		return err
	}
	l.pausedAt = nil
	l.pausedFor = 0
	return nil
}

func (l *Local) MarkGuessed(wordID string) error { return l.s.MarkGuessed(wordID) }
func (l *Local) Skip() error                     { return l.s.Skip() }

func (l *Local) EndTurn() error { return l.s.EndTurn(nil) }

func (l *Local) Advance() error  { return l.s.AdvanceToNextTurnOrRound() }
func (l *Local) Continue() error { return l.s.ContinueFromRoundResults(l.shuffle) }

func (l *Local) SetFirstExplainer(teamID, playerID string) error {
	return l.s.SetFirstExplainer(teamID, playerID)
}

// Pause freezes the countdown. No-op outside the playing phase or when
// already paused.
func (l *Local) Pause() {
	if l.s.Phase != PhasePlaying || l.pausedAt != nil {
		return
	}
	at := l.now()
	l.pausedAt = &at
}

// Resume restarts the countdown, accumulating the paused span.
func (l *Local) Resume() {
	if l.pausedAt == nil {
		return
	}
	l.pausedFor += l.now().Sub(*l.pausedAt)
	l.pausedAt = nil
}

// Remaining reports the countdown with paused time excluded.
func (l *Local) Remaining() time.Duration {
	if l.s.Phase != PhasePlaying || l.s.TurnStartedAt == nil {
		return 0
	}
	at := l.now()
	if l.pausedAt != nil {
		at = *l.pausedAt
	}
	return Remaining(l.s.RoundSeconds, l.s.TurnStartedAt.Add(l.pausedFor), at)
}

// TimedOut reports whether the countdown has hit zero.
func (l *Local) TimedOut() bool {
	return l.s.Phase == PhasePlaying && l.Remaining() == 0
}
