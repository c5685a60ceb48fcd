package session

import (
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geo"
)

// Kind distinguishes the two independent session families a user may hold
// per day.
type Kind string

const (
	KindRegular  Kind = "regular"
	KindOvertime Kind = "overtime"
)

// Status is the check-in punctuality tag, fixed at check-in time.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
)

// BreakStatus is the break-end punctuality tag. It is empty while the break
// is open.
type BreakStatus string

const (
	BreakOnTime BreakStatus = "on_time"
	BreakLate   BreakStatus = "late"
)

// AttendanceSession is one check-in/check-out cycle. CheckOut is nil while
// the session is open.
type AttendanceSession struct {
	ID        string
	UserID    string
	Kind      Kind
	CheckIn   time.Time
	CheckOut  *time.Time
	WorkMode  geo.Mode
	Status    Status
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the session has not been checked out yet.
func (s AttendanceSession) Open() bool {
	return s.CheckOut == nil
}

// BreakInterval is a pause nested inside exactly one session. EndTime is
// nil while the break is open.
type BreakInterval struct {
	ID        string
	SessionID string
	StartTime time.Time
	EndTime   *time.Time
	Status    BreakStatus
	CreatedAt time.Time
}

// Open reports whether the break has not been closed yet.
func (b BreakInterval) Open() bool {
	return b.EndTime == nil
}
