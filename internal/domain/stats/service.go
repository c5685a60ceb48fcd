package stats

import (
	"context"
	"time"
)

// StatsService rolls raw session, break, and absence records into
// per-period statistics. All period views go through one range-parameterized
// computation; day, week, and month are conveniences over it.
type StatsService interface {
	// ComputeStats aggregates one user's records over [periodStart, periodEnd].
	ComputeStats(ctx context.Context, userID string, periodStart, periodEnd time.Time) (PeriodStats, error)

	// ComputeStatsForAllUsers is the administrative batch form.
	ComputeStatsForAllUsers(ctx context.Context, periodStart, periodEnd time.Time) (map[string]PeriodStats, error)

	// DailyStats aggregates the calendar day containing day.
	DailyStats(ctx context.Context, userID string, day time.Time) (PeriodStats, error)

	// WeeklyStats aggregates the Monday-to-Sunday week containing day.
	WeeklyStats(ctx context.Context, userID string, day time.Time) (PeriodStats, error)

	// MonthlyStats aggregates the calendar month containing day.
	MonthlyStats(ctx context.Context, userID string, day time.Time) (PeriodStats, error)
}
