package game

import (
	"testing"
	"time"
)

// fakeClock steps time manually for countdown tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLocalFixture(t *testing.T) (*Local, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)}
	l, err := NewLocal(twoTeams(), threeWords(), 60, WithClock(clock.now), WithShuffle(noShuffle))
	if err != nil {
		t.Fatal(err)
	}
	return l, clock
}

func TestLocalPlaysThroughATurn(t *testing.T) {
	l, _ := newLocalFixture(t)
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}
	if err := l.MarkGuessed(l.Session().CurrentWordID); err != nil {
		t.Fatal(err)
	}
	if err := l.Skip(); err != nil {
		t.Fatal(err)
	}
	if err := l.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if l.Session().Phase != PhaseTurnResults {
		t.Errorf("phase = %s, want turn_results", l.Session().Phase)
	}
	if err := l.Advance(); err != nil {
		t.Fatal(err)
	}
	if l.Session().CurrentTeam().ID != "team-b" {
		t.Errorf("next team = %s, want team-b", l.Session().CurrentTeam().ID)
	}
}

func TestLocalPauseExcludesPausedTime(t *testing.T) {
	l, clock := newLocalFixture(t)
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}

	clock.advance(10 * time.Second)
	if got := l.Remaining(); got != 50*time.Second {
		t.Fatalf("remaining before pause = %v, want 50s", got)
	}

	l.Pause()
	clock.advance(20 * time.Second)
	if got := l.Remaining(); got != 50*time.Second {
		t.Errorf("remaining while paused = %v, want 50s", got)
	}

	l.Resume()
	clock.advance(10 * time.Second)
	if got := l.Remaining(); got != 40*time.Second {
		t.Errorf("remaining after resume = %v, want 40s", got)
	}
}

func TestLocalPauseIsIdempotent(t *testing.T) {
	l, clock := newLocalFixture(t)
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}
	l.Pause()
	clock.advance(5 * time.Second)
	l.Pause() // second pause must not reset the pause point
	clock.advance(5 * time.Second)
	l.Resume()
	l.Resume() // second resume must not double-count
	if got := l.Remaining(); got != 60*time.Second {
		t.Errorf("remaining = %v, want 60s", got)
	}
}

func TestLocalPauseOutsidePlayingIsNoop(t *testing.T) {
	l, clock := newLocalFixture(t)
	l.Pause()
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}
	clock.advance(15 * time.Second)
	if got := l.Remaining(); got != 45*time.Second {
		t.Errorf("remaining = %v, want 45s", got)
	}
}

func TestLocalTimedOut(t *testing.T) {
	l, clock := newLocalFixture(t)
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}
	if l.TimedOut() {
		t.Error("timed out immediately after start")
	}
	clock.advance(61 * time.Second)
	if !l.TimedOut() {
		t.Error("not timed out after countdown expired")
	}
	if err := l.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if l.TimedOut() {
		t.Error("timed out outside playing phase")
	}
}

// Restarting a turn resets pause bookkeeping from the previous turn.
func TestLocalNewTurnResetsPauseState(t *testing.T) {
	l, clock := newLocalFixture(t)
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}
	l.Pause()
	clock.advance(30 * time.Second)
	l.Resume()
	if err := l.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if err := l.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := l.StartTurn(); err != nil {
		t.Fatal(err)
	}
	clock.advance(10 * time.Second)
	if got := l.Remaining(); got != 50*time.Second {
		t.Errorf("remaining in fresh turn = %v, want 50s", got)
	}
}
