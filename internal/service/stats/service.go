package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/config"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/absence"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/stats"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geo"
	sessionsvc "github.com/saudkhanbpk/EMS-sub000/internal/service/session"
	"golang.org/x/sync/errgroup"
)

type StatsServiceImpl struct {
	session.SessionRepository
	session.BreakRepository
	absence.AbsenceRepository
	tracker *sessionsvc.BreakTracker
	policy  config.AttendanceConfig
	loc     *time.Location

	// clock, swappable in tests
	now func() time.Time
}

func NewStatsService(
	sessionRepo session.SessionRepository,
	breakRepo session.BreakRepository,
	absenceRepo absence.AbsenceRepository,
	tracker *sessionsvc.BreakTracker,
	policy config.AttendanceConfig,
	loc *time.Location,
) stats.StatsService {
	if loc == nil {
		loc = time.UTC
	}
	if tracker == nil {
		tracker = sessionsvc.NewBreakTracker(policy.LateBreakEndCutoff, policy.DefaultMissingBreakHours, loc)
	}
	return &StatsServiceImpl{
		SessionRepository: sessionRepo,
		BreakRepository:   breakRepo,
		AbsenceRepository: absenceRepo,
		tracker:           tracker,
		policy:            policy,
		loc:               loc,
		now:               time.Now,
	}
}

// ComputeStats implements stats.StatsService.
func (s *StatsServiceImpl) ComputeStats(ctx context.Context, userID string, periodStart, periodEnd time.Time) (stats.PeriodStats, error) {
	sessions, err := s.SessionRepository.Query(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return stats.PeriodStats{}, fmt.Errorf("failed to query sessions: %w", err)
	}

	breaks, err := s.breaksFor(ctx, sessions)
	if err != nil {
		return stats.PeriodStats{}, err
	}

	absences, err := s.AbsenceRepository.Query(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return stats.PeriodStats{}, fmt.Errorf("failed to query absences: %w", err)
	}

	return s.aggregate(userID, sessions, breaks, absences, periodStart, periodEnd), nil
}

// ComputeStatsForAllUsers implements stats.StatsService.
func (s *StatsServiceImpl) ComputeStatsForAllUsers(ctx context.Context, periodStart, periodEnd time.Time) (map[string]stats.PeriodStats, error) {
	var (
		sessions []session.AttendanceSession
		absences []absence.AbsenceRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.SessionRepository.QueryAll(gctx, periodStart, periodEnd)
		if err != nil {
			return fmt.Errorf("failed to query sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		absences, err = s.AbsenceRepository.QueryAll(gctx, periodStart, periodEnd)
		if err != nil {
			return fmt.Errorf("failed to query absences: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	breaks, err := s.breaksFor(ctx, sessions)
	if err != nil {
		return nil, err
	}

	sessionsByUser := make(map[string][]session.AttendanceSession)
	for _, sess := range sessions {
		sessionsByUser[sess.UserID] = append(sessionsByUser[sess.UserID], sess)
	}
	absencesByUser := make(map[string][]absence.AbsenceRecord)
	for _, rec := range absences {
		absencesByUser[rec.UserID] = append(absencesByUser[rec.UserID], rec)
	}

	result := make(map[string]stats.PeriodStats, len(sessionsByUser))
	for userID, userSessions := range sessionsByUser {
		result[userID] = s.aggregate(userID, userSessions, breaks, absencesByUser[userID], periodStart, periodEnd)
	}
	// Users with absences but no sessions still get a row.
	for userID, userAbsences := range absencesByUser {
		if _, ok := result[userID]; !ok {
			result[userID] = s.aggregate(userID, nil, breaks, userAbsences, periodStart, periodEnd)
		}
	}

	return result, nil
}

func (s *StatsServiceImpl) breaksFor(ctx context.Context, sessions []session.AttendanceSession) (map[string][]session.BreakInterval, error) {
	bySession := make(map[string][]session.BreakInterval)
	if len(sessions) == 0 {
		return bySession, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}

	breaks, err := s.BreakRepository.QueryBySessions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query breaks: %w", err)
	}

	for _, b := range breaks {
		bySession[b.SessionID] = append(bySession[b.SessionID], b)
	}
	return bySession, nil
}

// aggregate is the single range-parameterized rollup behind every period
// view. It tolerates inconsistent data by policy: duplicate same-day
// sessions collapse to the earliest check-in, a missing checkout defaults
// to "now" for today's records and to check-in + a fixed number of hours
// for historical ones, and a missing break end contributes a fixed default.
func (s *StatsServiceImpl) aggregate(
	userID string,
	sessions []session.AttendanceSession,
	breaksBySession map[string][]session.BreakInterval,
	absences []absence.AbsenceRecord,
	periodStart, periodEnd time.Time,
) stats.PeriodStats {
	now := s.now().In(s.loc)
	today := dateKey(now)

	// Daily dedup, per kind: earliest check-in wins on a same-day collision.
	type kindDay struct {
		kind session.Kind
		day  string
	}
	deduped := make(map[kindDay]session.AttendanceSession)
	for _, sess := range sessions {
		key := kindDay{sess.Kind, dateKey(sess.CheckIn.In(s.loc))}
		if existing, ok := deduped[key]; ok && !sess.CheckIn.Before(existing.CheckIn) {
			continue
		}
		deduped[key] = sess
	}

	result := stats.PeriodStats{
		UserID:      userID,
		PeriodStart: periodStart.In(s.loc).Format("2006-01-02"),
		PeriodEnd:   periodEnd.In(s.loc).Format("2006-01-02"),
	}

	hoursByDay := make(map[string]float64)
	sessionCount := 0

	for key, sess := range deduped {
		sessionCount++

		// Missing checkout: an in-progress session today runs to now; a
		// historical gap gets the fixed default. The asymmetry mirrors the
		// recorded behavior of the dashboards this replaces.
		end := now
		if sess.CheckOut != nil {
			end = *sess.CheckOut
		} else if key.day != today {
			end = sess.CheckIn.Add(time.Duration(s.policy.DefaultMissingCheckoutHours * float64(time.Hour)))
		}

		raw := end.Sub(sess.CheckIn).Hours()

		var breakHours float64
		for _, b := range breaksBySession[sess.ID] {
			breakHours += s.tracker.DurationHours(b)
		}

		hoursByDay[key.day] += raw - breakHours

		// Only regular sessions drive the presence counters; overtime
		// contributes hours.
		if sess.Kind != session.KindRegular {
			continue
		}
		switch sess.Status {
		case session.StatusLate:
			result.LateDays++
		default:
			result.PresentDays++
		}
		switch sess.WorkMode {
		case geo.ModeOnSite:
			result.OnSiteDays++
		case geo.ModeRemote:
			result.RemoteDays++
		}
	}

	// Per-day cap bounds data-entry anomalies before they reach the total.
	for _, hours := range hoursByDay {
		if hours < 0 {
			hours = 0
		}
		if hours > s.policy.DailyHourCap {
			hours = s.policy.DailyHourCap
		}
		result.TotalHoursWorked += hours
	}

	for _, rec := range absences {
		if rec.Type == absence.TypeAbsent || rec.Type == absence.TypeLeave {
			result.AbsentDays++
		}
	}

	result.ExpectedWorkingDays = countWeekdays(periodStart.In(s.loc), periodEnd.In(s.loc))

	divisor := sessionCount
	if divisor < 1 {
		divisor = 1
	}
	result.AverageHoursPerDay = result.TotalHoursWorked / float64(divisor)

	attended := result.PresentDays + result.LateDays
	if result.ExpectedWorkingDays > 0 {
		result.AttendanceRate = float64(attended) / float64(result.ExpectedWorkingDays)
	}

	return result
}

// DailyStats implements stats.StatsService.
func (s *StatsServiceImpl) DailyStats(ctx context.Context, userID string, day time.Time) (stats.PeriodStats, error) {
	local := day.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return s.ComputeStats(ctx, userID, start, start.AddDate(0, 0, 1).Add(-time.Second))
}

// WeeklyStats implements stats.StatsService.
func (s *StatsServiceImpl) WeeklyStats(ctx context.Context, userID string, day time.Time) (stats.PeriodStats, error) {
	start, end := weekBounds(day.In(s.loc))
	return s.ComputeStats(ctx, userID, start, end)
}

// MonthlyStats implements stats.StatsService.
func (s *StatsServiceImpl) MonthlyStats(ctx context.Context, userID string, day time.Time) (stats.PeriodStats, error) {
	local := day.In(s.loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
	return s.ComputeStats(ctx, userID, start, start.AddDate(0, 1, 0).Add(-time.Second))
}

// weekBounds returns the Monday 00:00 to Sunday 23:59:59 window containing t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -(weekday - 1))
	return monday, monday.AddDate(0, 0, 7).Add(-time.Second)
}

// countWeekdays counts Mon-Fri days in [start, end].
func countWeekdays(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())

	count := 0
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
