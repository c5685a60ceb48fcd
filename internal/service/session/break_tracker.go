package session

import (
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
)

// BreakTracker encapsulates the one-open-break invariant, the break-end
// punctuality rule, and the default duration applied to breaks that were
// never closed. The aggregation engine shares the duration policy.
type BreakTracker struct {
	lateEndCutoff       int // minutes since local midnight
	defaultMissingHours float64
	loc                 *time.Location
}

func NewBreakTracker(lateEndCutoff int, defaultMissingHours float64, loc *time.Location) *BreakTracker {
	if loc == nil {
		loc = time.UTC
	}
	return &BreakTracker{
		lateEndCutoff:       lateEndCutoff,
		defaultMissingHours: defaultMissingHours,
		loc:                 loc,
	}
}

// EnsureCanStart rejects a new break while one is already open.
func (t *BreakTracker) EnsureCanStart(open *session.BreakInterval) error {
	if open != nil {
		return session.ErrBreakAlreadyOpen
	}
	return nil
}

// CloseStatus tags a break closing at now: late strictly after the cutoff,
// on_time otherwise.
func (t *BreakTracker) CloseStatus(now time.Time) session.BreakStatus {
	local := now.In(t.loc)
	if local.Hour()*60+local.Minute() > t.lateEndCutoff {
		return session.BreakLate
	}
	return session.BreakOnTime
}

// DurationHours returns the break's length in hours. A break with no end
// contributes the configured default rather than an error; missing data is
// a defined leniency here, not a failure.
func (t *BreakTracker) DurationHours(b session.BreakInterval) float64 {
	if b.EndTime == nil {
		return t.defaultMissingHours
	}
	return b.EndTime.Sub(b.StartTime).Hours()
}
