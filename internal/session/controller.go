// internal/session/controller.go
//
// Replicated session controller: the multiplayer face of the state machine
// in internal/game. The controller holds no authoritative state of its own.
// Every mutating operation is one read-modify-write cycle against the
// SessionStore: fetch the last written document, apply the transition
// locally, write the entire new document back. All participants (including
// the writer) observe the result through the store's change feed.
//
// Consistency model: last-writer-wins whole-document replication under a
// single-actor convention. At any moment only the player named by
// activePlayerId (or the host) is expected to issue mutations; the store
// does not prevent concurrent writers, and two devices racing from the
// same revision will silently lose one update. That risk is accepted and
// demonstrated by test rather than patched over with merge semantics.
//
// Operations are safe to retry on transient store errors: the computed
// next state is a pure function of the previously read document, and a
// retry re-reads before rewriting.

package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fishbowlhq/go-server/internal/game"
	"github.com/fishbowlhq/go-server/internal/store"
)

const defaultOpTimeout = 10 * time.Second

// Option customizes a Controller.
type Option func(*Controller)

// WithClock substitutes the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithShuffle substitutes the pool shuffler, for deterministic tests.
func WithShuffle(shuffle game.ShuffleFunc) Option {
	return func(c *Controller) { c.shuffle = shuffle }
}

// WithOpTimeout bounds each store round-trip.
func WithOpTimeout(d time.Duration) Option {
	return func(c *Controller) { c.opTimeout = d }
}

// Controller drives replicated sessions against a shared store.
type Controller struct {
	store     store.SessionStore
	log       zerolog.Logger
	now       func() time.Time
	shuffle   game.ShuffleFunc
	opTimeout time.Duration
}

// New constructs a Controller on top of st.
func New(st store.SessionStore, opts ...Option) *Controller {
	c := &Controller{
		store:     st,
		log:       log.With().Str("component", "session").Logger(),
		now:       time.Now,
		shuffle:   func(ids []string) { rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }) },
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TeamSetup is the pre-game description of one team.
type TeamSetup struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Members []string `json:"members"`
}

// Initialize creates the shared session document: a fresh room code, round
// one, shuffled word order, team-prep phase. Word identities are minted
// here so the word records themselves never need to change again.
func (c *Controller) Initialize(ctx context.Context, hostID string, teams []TeamSetup, wordTexts []string, roundSeconds int, passcodeHash string) (*game.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	code, err := newRoomCode(ctx, c.store)
	if err != nil {
		return nil, err
	}

	gameTeams := make([]game.Team, len(teams))
	for i, t := range teams {
		gameTeams[i] = game.Team{
			ID:      uuid.NewString(),
			Name:    t.Name,
			Color:   t.Color,
			Members: append([]string(nil), t.Members...),
		}
	}
	words := make([]game.Word, len(wordTexts))
	for i, text := range wordTexts {
		words[i] = game.Word{ID: uuid.NewString(), Text: text}
	}

	s, err := game.New(code, hostID, gameTeams, words, roundSeconds, c.shuffle)
	if err != nil {
		return nil, err
	}
	s.PasscodeHash = passcodeHash
	s.UpdatedAt = c.now()

	if err := c.put(ctx, s); err != nil {
		return nil, err
	}
	c.log.Info().Str("room", code).Int("teams", len(teams)).Int("words", len(words)).Msg("session created")
	return s, nil
}

// StartTurn moves the current team from prep into play.
func (c *Controller) StartTurn(ctx context.Context, code string) (*game.Session, error) {
	return c.apply(ctx, code, "start_turn", func(s *game.Session) error {
		return s.StartTurn(c.now())
	})
}

// MarkWordGuessed credits the current word and advances to the next one.
// Guessing the last word of the round ends the turn in the same write.
func (c *Controller) MarkWordGuessed(ctx context.Context, code, wordID string) (*game.Session, error) {
	return c.apply(ctx, code, "mark_guessed", func(s *game.Session) error {
		return s.MarkGuessed(wordID)
	})
}

// SkipWord rotates the current word to the tail of the pool.
func (c *Controller) SkipWord(ctx context.Context, code string) (*game.Session, error) {
	return c.apply(ctx, code, "skip_word", func(s *game.Session) error {
		return s.Skip()
	})
}

// EndTurn closes the turn (timer expiry or give-up), crediting any words
// the client batched into the final write.
func (c *Controller) EndTurn(ctx context.Context, code string, guessedThisTurn []string) (*game.Session, error) {
	return c.apply(ctx, code, "end_turn", func(s *game.Session) error {
		return s.EndTurn(guessedThisTurn)
	})
}

// AdvanceToNextTurnOrRound continues from turn results to the next team's
// prep, or to round results when the pool is exhausted.
func (c *Controller) AdvanceToNextTurnOrRound(ctx context.Context, code string) (*game.Session, error) {
	return c.apply(ctx, code, "advance", func(s *game.Session) error {
		return s.AdvanceToNextTurnOrRound()
	})
}

// ContinueFromRoundResults starts the next round with a reshuffled pool,
// or finishes the session after the last round.
func (c *Controller) ContinueFromRoundResults(ctx context.Context, code string) (*game.Session, error) {
	return c.apply(ctx, code, "continue", func(s *game.Session) error {
		return s.ContinueFromRoundResults(c.shuffle)
	})
}

// SetFirstExplainer records the host's explainer choice for a team's first
// turn. Locked once the team has played.
func (c *Controller) SetFirstExplainer(ctx context.Context, code, teamID, playerID string) (*game.Session, error) {
	return c.apply(ctx, code, "set_explainer", func(s *game.Session) error {
		return s.SetFirstExplainer(teamID, playerID)
	})
}

// Get fetches the current document.
func (c *Controller) Get(ctx context.Context, code string) (*game.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Get(ctx, code)
}

// Delete discards the room. Observers learn of it through a nil document
// on the change feed.
func (c *Controller) Delete(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Delete(ctx, code)
}

// Subscribe attaches an observer to the room's change feed.
func (c *Controller) Subscribe(code string, onChange func(*game.Session)) (cancel func()) {
	return c.store.Subscribe(code, onChange)
}

// apply runs one read-modify-write cycle. Illegal transitions are logged
// and surfaced without writing; they usually mean a stale client replayed
// an action, and the session must not be harmed on their behalf.
func (c *Controller) apply(ctx context.Context, code, op string, mutate func(*game.Session) error) (*game.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	s, err := c.store.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := mutate(s); err != nil {
		if errors.Is(err, game.ErrIllegalTransition) {
			c.log.Warn().Str("room", code).Str("op", op).Str("phase", string(s.Phase)).Err(err).
				Msg("ignoring illegal transition")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.UpdatedAt = c.now()
	if err := c.put(ctx, s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// put writes the document, retrying once on a transient failure. The
// rewrite is harmless: the next state was computed purely from the read
// document, and a not-found means the room is gone, not flaky.
func (c *Controller) put(ctx context.Context, s *game.Session) error {
	err := c.store.Put(ctx, s)
	if err == nil || errors.Is(err, store.ErrNotFound) || ctx.Err() != nil {
		return err
	}
	c.log.Warn().Str("room", s.Code).Err(err).Msg("retrying session write")
	return c.store.Put(ctx, s)
}
