// internal/game/allocator.go
//
// Turn/role allocation: which team member explains on a given turn, and
// who guesses. Deterministic in the team's stable member order plus a
// per-team rotation counter held on the Session.

package game

// ExplainerIndex returns the member index explaining the team's turn with
// the given rotation counter. A single-member team always explains for
// itself; an empty team is an allocation error, not an index panic.
func ExplainerIndex(t Team, rotation int) (int, error) {
	if len(t.Members) == 0 {
		return 0, ErrEmptyTeam
	}
	return rotation % len(t.Members), nil
}

// Explainer returns the player ID explaining the team's turn.
func Explainer(t Team, rotation int) (string, error) {
	idx, err := ExplainerIndex(t, rotation)
	if err != nil {
		return "", err
	}
	return t.Members[idx], nil
}

// Guessers returns every member except the explainer. For a one-member
// team the result is empty: the degenerate self-guessing case is allowed
// and must not crash.
func Guessers(t Team, explainerIdx int) []string {
	out := make([]string, 0, len(t.Members))
	for i, m := range t.Members {
		if i == explainerIdx {
			continue
		}
		out = append(out, m)
	}
	return out
}

// explainerFor resolves the current explainer of a team from the session's
// rotation state.
func (s *Session) explainerFor(t Team) (string, error) {
	return Explainer(t, s.Rotation[t.ID])
}

// CurrentExplainerIndex returns the member index of the current team's
// explainer. Only meaningful while the phase is not finished.
func (s *Session) CurrentExplainerIndex() (int, error) {
	return ExplainerIndex(s.CurrentTeam(), s.Rotation[s.CurrentTeam().ID])
}

// CurrentGuessers returns the guessing members of the current team.
func (s *Session) CurrentGuessers() ([]string, error) {
	idx, err := s.CurrentExplainerIndex()
	if err != nil {
		return nil, err
	}
	return Guessers(s.CurrentTeam(), idx), nil
}

// SetFirstExplainer picks the explainer for a team's very first turn.
// Once the team has taken a turn the choice is locked and rotation takes
// over; re-opening it is intentionally disallowed.
func (s *Session) SetFirstExplainer(teamID, playerID string) error {
	var team *Team
	for i := range s.Teams {
		if s.Teams[i].ID == teamID {
			team = &s.Teams[i]
			break
		}
	}
	if team == nil {
		return ErrNoTeam
	}
	if s.TurnsTaken[teamID] > 0 {
		return ErrRoleLocked
	}
	for i, m := range team.Members {
		if m == playerID {
			s.Rotation[teamID] = i
			if s.TeamIndex < len(s.Teams) && s.Teams[s.TeamIndex].ID == teamID && s.Phase == PhaseTeamPrep {
				s.ActivePlayerID = playerID
			}
			return nil
		}
	}
	return ErrNoMember
}
