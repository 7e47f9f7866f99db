// internal/game/types.go
//
// Core type definitions for the fishbowl game engine.
// Defines:
//   - Phase: the turn/round progression stage of a session.
//   - Team, Word: the immutable records nested in a session document.
//   - Session: the single shared document capturing all mutable game progress.

package game

import "time"

// Phase is the current stage of the turn/round state machine.
// Transitions between phases are owned by the methods in machine.go;
// each transition helper validates its source phase and clears the
// fields that are meaningless in the destination phase.
type Phase string

const (
	PhaseTeamPrep     Phase = "team_prep"     // waiting for the explainer to start the turn
	PhasePlaying      Phase = "playing"       // turn in progress, a current word is shown
	PhaseTurnResults  Phase = "turn_results"  // turn over, words guessed this turn on display
	PhaseRoundResults Phase = "round_results" // round's pool exhausted, standings on display
	PhaseFinished     Phase = "finished"      // terminal
)

// Rounds is the number of rounds in a session. Each round replays the
// full word pool under a different explanation constraint.
const Rounds = 3

// RuleForRound returns the display name of the explanation constraint
// for a 1-based round ordinal.
func RuleForRound(round int) string {
	switch round {
	case 1:
		return "describe"
	case 2:
		return "one word"
	case 3:
		return "charades"
	}
	return ""
}

// Team is a fixed group of players. The member order is stable for the
// lifetime of a session; explainer rotation indexes into it.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color,omitempty"`
	Members []string `json:"members"`
}

// Word is an immutable identity+text record. Guessed/remaining status is
// tracked as identity sets on the Session, not as per-word flags, so a
// mutation never has to touch the words themselves.
type Word struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Session is the aggregate game document, one per room. In multiplayer it
// is replicated wholesale: every mutation replaces the entire document in
// the store, and every observer receives the full new value.
type Session struct {
	Code         string `json:"code"`
	HostID       string `json:"hostId"`
	PasscodeHash string `json:"passcodeHash,omitempty"`

	Teams        []Team `json:"teams"`
	Words        []Word `json:"words"`
	RoundSeconds int    `json:"roundSeconds"`

	Round     int   `json:"round"` // 1-based, monotonic forward-only
	Phase     Phase `json:"phase"`
	TeamIndex int   `json:"teamIndex"`

	// RoundRule is the display name of the current round's explanation
	// constraint, kept on the document so clients render it without
	// hardcoding the round ordering.
	RoundRule string `json:"roundRule,omitempty"`

	// RoundStartTeam is the index of the team that opened the current round.
	RoundStartTeam int `json:"roundStartTeam"`

	// Rotation maps team ID to that team's explainer rotation counter.
	// The explainer for a team's turn is Members[Rotation[id] % len(Members)].
	// The counter advances when a turn is cut short by the timer, but holds
	// when the turn ended because the round's pool was exhausted.
	Rotation map[string]int `json:"rotation"`

	// TurnsTaken counts completed turns per team ID, independent of Rotation.
	// A team's first explainer may only be chosen while its count is zero.
	TurnsTaken map[string]int `json:"turnsTaken"`

	CurrentWordID    string   `json:"currentWordId,omitempty"`
	RemainingWordIDs []string `json:"remainingWordIds"`
	AllWordIDs       []string `json:"allWordIds"`

	// TurnGuessedIDs freezes the words credited during the most recent turn,
	// for the turn-results display. Reset when the next turn starts.
	TurnGuessedIDs []string `json:"turnGuessedIds,omitempty"`

	// Scores maps team ID to per-round guessed-word counts (1-based round key).
	Scores map[string]map[int]int `json:"scores"`

	// ActivePlayerID names the single member expected to drive phase
	// transitions for the current turn. This is a convention, not an
	// enforced lock; see the replication notes in internal/session.
	ActivePlayerID string `json:"activePlayerId,omitempty"`

	TurnStartedAt *time.Time `json:"turnStartedAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ShuffleFunc permutes a word-ID slice in place. Injected so the machine
// stays deterministic under test.
type ShuffleFunc func([]string)

// Clone returns a deep copy of the session document. Store implementations
// hand out clones, so two callers reading the same revision never share
// mutable state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s

	out.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		out.Teams[i] = t
		out.Teams[i].Members = append([]string(nil), t.Members...)
	}
	out.Words = append([]Word(nil), s.Words...)
	out.RemainingWordIDs = append([]string(nil), s.RemainingWordIDs...)
	out.AllWordIDs = append([]string(nil), s.AllWordIDs...)
	out.TurnGuessedIDs = append([]string(nil), s.TurnGuessedIDs...)

	out.Rotation = make(map[string]int, len(s.Rotation))
	for k, v := range s.Rotation {
		out.Rotation[k] = v
	}
	out.TurnsTaken = make(map[string]int, len(s.TurnsTaken))
	for k, v := range s.TurnsTaken {
		out.TurnsTaken[k] = v
	}
	out.Scores = make(map[string]map[int]int, len(s.Scores))
	for team, rounds := range s.Scores {
		m := make(map[int]int, len(rounds))
		for r, n := range rounds {
			m[r] = n
		}
		out.Scores[team] = m
	}
	if s.TurnStartedAt != nil {
		t := *s.TurnStartedAt
		out.TurnStartedAt = &t
	}
	return &out
}

// WordByID looks a word up in the session pool.
func (s *Session) WordByID(id string) (Word, bool) {
	for _, w := range s.Words {
		if w.ID == id {
			return w, true
		}
	}
	return Word{}, false
}

// CurrentTeam returns the team whose turn it is.
func (s *Session) CurrentTeam() Team {
	return s.Teams[s.TeamIndex]
}
