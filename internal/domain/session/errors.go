package session

import "errors"

// Session domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn   = errors.New("you already have an open session of this kind today")
	ErrRegularSessionOpen = errors.New("overtime cannot start while a regular session is open")
	ErrCheckInConflict    = errors.New("a concurrent check-in was already recorded")

	// State errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session is already checked out")
	ErrBreakAlreadyOpen = errors.New("a break is already open for this session")
	ErrNoOpenBreak      = errors.New("no open break for this session")
	ErrBreakNotFound    = errors.New("break not found")

	// Provider errors
	ErrLocationUnavailable = errors.New("location reading unavailable")
)
