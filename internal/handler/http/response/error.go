package response

import (
	"errors"
	"net/http"

	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Conflicting state transitions
	case errors.Is(err, session.ErrAlreadyCheckedIn):
		Conflict(w, "An open session of this kind already exists for today")
	case errors.Is(err, session.ErrRegularSessionOpen):
		Conflict(w, "Close the regular session before starting overtime")
	case errors.Is(err, session.ErrCheckInConflict):
		Conflict(w, "A concurrent check-in already created this session")
	case errors.Is(err, session.ErrBreakAlreadyOpen):
		Conflict(w, "An open break already exists for this session")

	// Missing records
	case errors.Is(err, session.ErrSessionNotFound):
		NotFound(w, "Session not found")
	case errors.Is(err, session.ErrBreakNotFound):
		NotFound(w, "Break not found")

	// Invalid operations on current state
	case errors.Is(err, session.ErrSessionClosed):
		BadRequest(w, "Session is already checked out", nil)
	case errors.Is(err, session.ErrNoOpenBreak):
		BadRequest(w, "No open break to end", nil)

	// Location provider failures
	case errors.Is(err, session.ErrLocationUnavailable):
		ServiceUnavailable(w, "Could not determine location")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
