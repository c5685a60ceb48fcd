package session

import (
	"context"
	"time"
)

// SessionRepository is the durable-store contract for attendance sessions.
// Open-session uniqueness per (user, kind, day) is the store's
// responsibility; concurrent inserts must surface ErrCheckInConflict rather
// than both succeeding.
type SessionRepository interface {
	// Insert persists a new session and returns it with id and timestamps
	// assigned.
	Insert(ctx context.Context, s AttendanceSession) (AttendanceSession, error)

	// UpdateCheckout closes the session if it is still open. Returns
	// ErrSessionClosed when the session exists but was already closed, and
	// ErrSessionNotFound when it does not exist.
	UpdateCheckout(ctx context.Context, id string, checkout time.Time) error

	// GetByID retrieves a session by id.
	GetByID(ctx context.Context, id string) (AttendanceSession, error)

	// FindOpen finds the open session of the given kind whose check-in falls
	// in [dayStart, dayEnd). Returns nil when there is none.
	FindOpen(ctx context.Context, userID string, kind Kind, dayStart, dayEnd time.Time) (*AttendanceSession, error)

	// Query returns all sessions for one user whose check-in falls in
	// [start, end], ordered by check-in ascending.
	Query(ctx context.Context, userID string, start, end time.Time) ([]AttendanceSession, error)

	// QueryAll is the batch variant over every user, for administrative
	// aggregation.
	QueryAll(ctx context.Context, start, end time.Time) ([]AttendanceSession, error)

	// QueryStaleOpen returns sessions still open whose check-in is before
	// the cutoff. Consumed by the maintenance job.
	QueryStaleOpen(ctx context.Context, before time.Time) ([]AttendanceSession, error)
}

// BreakRepository is the durable-store contract for break intervals.
type BreakRepository interface {
	// Insert persists a new open break.
	Insert(ctx context.Context, b BreakInterval) (BreakInterval, error)

	// UpdateEnd closes the break if it is still open. Returns
	// ErrBreakNotFound when the break does not exist or was already closed,
	// making the close idempotent under at-least-once retries.
	UpdateEnd(ctx context.Context, id string, end time.Time, status BreakStatus) error

	// FindOpenBySession returns the session's open break, or nil.
	FindOpenBySession(ctx context.Context, sessionID string) (*BreakInterval, error)

	// QueryBySessions returns all breaks belonging to the given sessions.
	QueryBySessions(ctx context.Context, sessionIDs []string) ([]BreakInterval, error)
}
