package game

import "errors"

var (
	// ErrIllegalTransition marks an operation inconsistent with the current
	// phase (or a guess for a word that is not current). Callers treat it as
	// a programming or stale-client error: logged and ignored, never fatal
	// for the session.
	ErrIllegalTransition = errors.New("illegal phase transition")

	// ErrEmptyTeam is returned when a role would be allocated for a team
	// with no members. Empty teams must be excluded before play starts.
	ErrEmptyTeam = errors.New("team has no members")

	ErrNoTeams  = errors.New("session needs at least one team")
	ErrNoWords  = errors.New("session needs at least one word")
	ErrNoTeam   = errors.New("no such team")
	ErrNoMember = errors.New("player is not a member of the team")

	// ErrRoleLocked is returned when a first-explainer choice arrives after
	// the team has already taken a turn. The lock is one-way on purpose.
	ErrRoleLocked = errors.New("explainer choice is locked after the team's first turn")
)
