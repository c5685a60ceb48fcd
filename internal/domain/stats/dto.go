package stats

import (
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/validator"
)

// PeriodStats is the derived, non-persisted aggregate for one user over one
// period. It is recomputed per request and caches nothing.
type PeriodStats struct {
	UserID              string  `json:"user_id"`
	PeriodStart         string  `json:"period_start"`
	PeriodEnd           string  `json:"period_end"`
	PresentDays         int     `json:"present_days"`
	LateDays            int     `json:"late_days"`
	AbsentDays          int     `json:"absent_days"`
	OnSiteDays          int     `json:"on_site_days"`
	RemoteDays          int     `json:"remote_days"`
	TotalHoursWorked    float64 `json:"total_hours_worked"`
	AverageHoursPerDay  float64 `json:"average_hours_per_day"`
	ExpectedWorkingDays int     `json:"expected_working_days"`
	AttendanceRate      float64 `json:"attendance_rate"`
}

// RangeRequest asks for statistics over an explicit date range.
type RangeRequest struct {
	UserID    string `json:"-"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var ok bool

	if start, ok = validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	if end, ok = validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) == 0 && start.After(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range converts the request dates to period bounds. The end bound extends
// to the last instant of the end date so full days are covered.
func (r *RangeRequest) Range(loc *time.Location) (time.Time, time.Time) {
	start, _ := time.ParseInLocation("2006-01-02", r.StartDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", r.EndDate, loc)
	return start, end.AddDate(0, 0, 1).Add(-time.Second)
}
