// internal/game/machine.go
//
// The turn/round state machine. All mutations of a Session go through the
// methods here (plus SetFirstExplainer in allocator.go); both the local and
// the replicated controller drive the same transitions.
//
// Phase graph:
//
//	team_prep → playing → turn_results → team_prep   (next team, same round)
//	                                   → round_results → team_prep (next round)
//	                                                   → finished
//
// Transition rules worth calling out:
//   - Guessing the last remaining word moves straight to turn_results; a
//     session is never in the playing phase with an empty pool.
//   - A turn cut short by the timer advances the team's explainer rotation;
//     a turn that ended because the pool ran dry does not, so the same
//     explainer opens that team's next turn in the following round.
//   - Team order is a single round-robin that continues across round
//     boundaries rather than resetting to team zero.

package game

import (
	"fmt"
	"time"
)

// New builds the initial session document: round 1, team_prep, a freshly
// shuffled word order, zeroed scores and rotation counters.
func New(code, hostID string, teams []Team, words []Word, roundSeconds int, shuffle ShuffleFunc) (*Session, error) {
	if len(teams) == 0 {
		return nil, ErrNoTeams
	}
	for _, t := range teams {
		if len(t.Members) == 0 {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrEmptyTeam)
		}
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	if roundSeconds <= 0 {
		return nil, fmt.Errorf("round length must be positive, got %d", roundSeconds)
	}

	all := make([]string, len(words))
	for i, w := range words {
		all[i] = w.ID
	}
	remaining := append([]string(nil), all...)
	if shuffle != nil {
		shuffle(remaining)
	}

	s := &Session{
		Code:             code,
		HostID:           hostID,
		Teams:            teams,
		Words:            words,
		RoundSeconds:     roundSeconds,
		Round:            1,
		RoundRule:        RuleForRound(1),
		Phase:            PhaseTeamPrep,
		TeamIndex:        0,
		RoundStartTeam:   0,
		Rotation:         make(map[string]int, len(teams)),
		TurnsTaken:       make(map[string]int, len(teams)),
		RemainingWordIDs: remaining,
		AllWordIDs:       all,
		Scores:           make(map[string]map[int]int, len(teams)),
	}
	explainer, err := s.explainerFor(s.CurrentTeam())
	if err != nil {
		return nil, err
	}
	s.ActivePlayerID = explainer
	return s, nil
}

// StartTurn moves team_prep → playing: records the turn start time and
// selects the head of the remaining pool as the current word.
func (s *Session) StartTurn(now time.Time) error {
	if s.Phase != PhaseTeamPrep {
		return fmt.Errorf("start turn in %s: %w", s.Phase, ErrIllegalTransition)
	}
	start := now
	s.TurnStartedAt = &start
	s.CurrentWordID = s.RemainingWordIDs[0]
	s.TurnGuessedIDs = nil
	s.Phase = PhasePlaying
	return nil
}

// MarkGuessed credits the current word to the acting team: removes it from
// the remaining pool, increments the team's score for this round, and shows
// the next word. Guessing the last word ends the turn immediately.
func (s *Session) MarkGuessed(wordID string) error {
	if s.Phase != PhasePlaying {
		return fmt.Errorf("guess in %s: %w", s.Phase, ErrIllegalTransition)
	}
	if wordID == "" || wordID != s.CurrentWordID {
		return fmt.Errorf("guess for non-current word %q: %w", wordID, ErrIllegalTransition)
	}
	s.creditWord(wordID)
	s.RemainingWordIDs = s.RemainingWordIDs[1:]
	if len(s.RemainingWordIDs) == 0 {
		s.finishTurn(true)
		return nil
	}
	s.CurrentWordID = s.RemainingWordIDs[0]
	return nil
}

// Skip rotates the current word to the tail of the remaining pool so it
// resurfaces later in this turn or a later team's turn.
func (s *Session) Skip() error {
	if s.Phase != PhasePlaying {
		return fmt.Errorf("skip in %s: %w", s.Phase, ErrIllegalTransition)
	}
	if len(s.RemainingWordIDs) > 1 {
		head := s.RemainingWordIDs[0]
		s.RemainingWordIDs = append(s.RemainingWordIDs[1:], head)
	}
	s.CurrentWordID = s.RemainingWordIDs[0]
	return nil
}

// EndTurn moves playing → turn_results. Used for the timer-expiry and
// give-up paths. Any listed words that are still in the remaining pool are
// credited first, which lets a client batch its final guesses into the
// turn-ending write; words already credited individually are not counted
// twice because they are no longer remaining.
func (s *Session) EndTurn(guessedThisTurn []string) error {
	if s.Phase != PhasePlaying {
		return fmt.Errorf("end turn in %s: %w", s.Phase, ErrIllegalTransition)
	}
	for _, id := range guessedThisTurn {
		if s.removeRemaining(id) {
			s.creditWord(id)
		}
	}
	s.finishTurn(len(s.RemainingWordIDs) == 0)
	return nil
}

// AdvanceToNextTurnOrRound moves turn_results → team_prep for the next team,
// or → round_results when this turn exhausted the round's pool.
func (s *Session) AdvanceToNextTurnOrRound() error {
	if s.Phase != PhaseTurnResults {
		return fmt.Errorf("advance in %s: %w", s.Phase, ErrIllegalTransition)
	}
	if len(s.RemainingWordIDs) == 0 {
		s.Phase = PhaseRoundResults
		s.ActivePlayerID = ""
		return nil
	}
	s.TeamIndex = (s.TeamIndex + 1) % len(s.Teams)
	return s.enterTeamPrep()
}

// ContinueFromRoundResults moves round_results → team_prep for the next
// round, or → finished after the last round. A new round reshuffles the
// full pool; scores are cumulative per round and are never reset.
func (s *Session) ContinueFromRoundResults(shuffle ShuffleFunc) error {
	if s.Phase != PhaseRoundResults {
		return fmt.Errorf("continue in %s: %w", s.Phase, ErrIllegalTransition)
	}
	if s.Round >= Rounds {
		s.Phase = PhaseFinished
		s.ActivePlayerID = ""
		s.CurrentWordID = ""
		s.TurnStartedAt = nil
		return nil
	}
	s.Round++
	s.RoundRule = RuleForRound(s.Round)
	s.RemainingWordIDs = append([]string(nil), s.AllWordIDs...)
	if shuffle != nil {
		shuffle(s.RemainingWordIDs)
	}
	s.TeamIndex = (s.TeamIndex + 1) % len(s.Teams)
	s.RoundStartTeam = s.TeamIndex
	return s.enterTeamPrep()
}

// GuessedThisRound derives the identities already credited in the current
// round: the full pool minus the remaining pool, in pool order.
func (s *Session) GuessedThisRound() []string {
	left := make(map[string]struct{}, len(s.RemainingWordIDs))
	for _, id := range s.RemainingWordIDs {
		left[id] = struct{}{}
	}
	var out []string
	for _, id := range s.AllWordIDs {
		if _, ok := left[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Session) enterTeamPrep() error {
	explainer, err := s.explainerFor(s.CurrentTeam())
	if err != nil {
		return err
	}
	s.Phase = PhaseTeamPrep
	s.ActivePlayerID = explainer
	return nil
}

// finishTurn enters turn_results. exhausted reports whether the turn ended
// because the pool ran dry; only a timer-cut turn advances rotation.
func (s *Session) finishTurn(exhausted bool) {
	team := s.CurrentTeam()
	s.TurnsTaken[team.ID]++
	if !exhausted {
		s.Rotation[team.ID]++
	}
	s.Phase = PhaseTurnResults
	s.CurrentWordID = ""
	s.TurnStartedAt = nil
}

func (s *Session) creditWord(wordID string) {
	team := s.CurrentTeam()
	if s.Scores[team.ID] == nil {
		s.Scores[team.ID] = make(map[int]int, Rounds)
	}
	s.Scores[team.ID][s.Round]++
	s.TurnGuessedIDs = append(s.TurnGuessedIDs, wordID)
}

func (s *Session) removeRemaining(wordID string) bool {
	for i, id := range s.RemainingWordIDs {
		if id == wordID {
			s.RemainingWordIDs = append(s.RemainingWordIDs[:i], s.RemainingWordIDs[i+1:]...)
			return true
		}
	}
	return false
}
