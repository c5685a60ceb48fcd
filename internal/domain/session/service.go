package session

import (
	"context"
)

// SessionService owns the lifecycle of attendance sessions:
// Closed → CheckedIn → OnBreak → CheckedIn → Closed.
type SessionService interface {
	// CheckIn opens a session of the requested kind. Fails when a session of
	// that kind is already open today, or when overtime is requested while a
	// regular session is open.
	CheckIn(ctx context.Context, req CheckInRequest) (SessionResponse, error)

	// StartBreak opens a break on the referenced open session.
	StartBreak(ctx context.Context, ref SessionRef) (BreakResponse, error)

	// EndBreak closes the session's open break, tagging it on_time or late.
	EndBreak(ctx context.Context, ref SessionRef) (BreakResponse, error)

	// CheckOut closes the referenced session, force-closing an open break
	// first.
	CheckOut(ctx context.Context, ref SessionRef) (SessionResponse, error)

	// GetOpenSession resolves the user's current open session of the given
	// kind, or nil when there is none.
	GetOpenSession(ctx context.Context, userID string, kind Kind) (*SessionResponse, error)

	// ListSessions returns the user's sessions in a date range.
	ListSessions(ctx context.Context, userID string, filter SessionFilter) ([]SessionResponse, error)
}
