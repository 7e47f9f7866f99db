// internal/game/ledger.go
//
// Score queries derived from the per-team, per-round counters on a Session.
// All queries are pure reads; crediting happens in machine.go.

package game

import "sort"

// Standing is one row of the team leaderboard.
type Standing struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Total  int    `json:"total"`
}

// RoundScore returns the number of words a team guessed in a round.
func (s *Session) RoundScore(teamID string, round int) int {
	return s.Scores[teamID][round]
}

// TotalScore sums a team's scores across all rounds.
func (s *Session) TotalScore(teamID string) int {
	total := 0
	for _, n := range s.Scores[teamID] {
		total += n
	}
	return total
}

// Standings returns teams by descending total score. Ties keep the original
// team order, so repeated calls without an intervening mutation are stable.
func (s *Session) Standings() []Standing {
	out := make([]Standing, len(s.Teams))
	for i, t := range s.Teams {
		out[i] = Standing{TeamID: t.ID, Name: t.Name, Total: s.TotalScore(t.ID)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// CompletedRounds lists the 1-based ordinals of rounds fully played out.
func (s *Session) CompletedRounds() []int {
	last := s.Round - 1
	if s.Phase == PhaseFinished || s.Phase == PhaseRoundResults {
		last = s.Round
	}
	out := make([]int, 0, last)
	for r := 1; r <= last; r++ {
		out = append(out, r)
	}
	return out
}

// StartedRounds lists the 1-based ordinals of rounds that have begun.
func (s *Session) StartedRounds() []int {
	out := make([]int, 0, s.Round)
	for r := 1; r <= s.Round; r++ {
		out = append(out, r)
	}
	return out
}
