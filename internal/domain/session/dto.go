package session

import (
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/validator"
)

// ========================================
// SESSION DTOs
// ========================================

var validKinds = []string{string(KindRegular), string(KindOvertime)}

type CheckInRequest struct {
	UserID    string   `json:"-"`
	Kind      Kind     `json:"kind"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !validator.IsInSlice(string(r.Kind), validKinds) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be regular or overtime",
		})
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SessionRef identifies a session for break and checkout operations. The
// SessionID may be stale (a client-cached id surviving a reload); the
// service re-resolves the open session from the store when it is.
type SessionRef struct {
	UserID    string `json:"-"`
	SessionID string `json:"session_id,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`
}

func (r *SessionRef) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.SessionID != "" && !validator.IsValidUUID(r.SessionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "session_id",
			Message: "session_id must be a valid UUID",
		})
	}

	if r.Kind != "" && !validator.IsInSlice(string(r.Kind), validKinds) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be regular or overtime",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionFilter struct {
	StartDate *string
	EndDate   *string
	Kind      *string
}

func (f *SessionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.Kind != nil && !validator.IsInSlice(*f.Kind, validKinds) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be regular or overtime",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Kind      string  `json:"kind"`
	CheckIn   string  `json:"check_in"`
	CheckOut  *string `json:"check_out,omitempty"`
	WorkMode  string  `json:"work_mode"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type BreakResponse struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// FormatTime renders timestamps the way the API serves them.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatTimePtr safely converts a *time.Time to a string.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := FormatTime(*t)
	return &format
}

// ToResponse maps a session entity to its API shape.
func ToResponse(s AttendanceSession) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Kind:      string(s.Kind),
		CheckIn:   FormatTime(s.CheckIn),
		CheckOut:  FormatTimePtr(s.CheckOut),
		WorkMode:  string(s.WorkMode),
		Status:    string(s.Status),
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}

// ToBreakResponse maps a break entity to its API shape.
func ToBreakResponse(b BreakInterval) BreakResponse {
	return BreakResponse{
		ID:        b.ID,
		SessionID: b.SessionID,
		StartTime: FormatTime(b.StartTime),
		EndTime:   FormatTimePtr(b.EndTime),
		Status:    string(b.Status),
	}
}
