package absence

import "time"

// Type marks why the user was away for the day.
type Type string

const (
	TypeAbsent Type = "Absent"
	TypeLeave  Type = "leave"
)

// AbsenceRecord is an independent daily marker, created by the absence
// reporting workflow and consumed read-only by the aggregation engine.
type AbsenceRecord struct {
	ID        string
	UserID    string
	Date      time.Time
	Type      Type
	Timing    string // free-form qualifier, e.g. half-day
	CreatedAt time.Time
}
