package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/config"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/retry"
	sessionsvc "github.com/saudkhanbpk/EMS-sub000/internal/service/session"
)

type SessionJobs struct {
	sessionRepo session.SessionRepository
	breakRepo   session.BreakRepository
	tracker     *sessionsvc.BreakTracker
	policy      config.AttendanceConfig
	loc         *time.Location
	retry       retry.Policy
	now         func() time.Time
}

func NewSessionJobs(
	sessionRepo session.SessionRepository,
	breakRepo session.BreakRepository,
	tracker *sessionsvc.BreakTracker,
	policy config.AttendanceConfig,
	loc *time.Location,
) *SessionJobs {
	if loc == nil {
		loc = time.UTC
	}
	if tracker == nil {
		tracker = sessionsvc.NewBreakTracker(policy.LateBreakEndCutoff, policy.DefaultMissingBreakHours, loc)
	}
	return &SessionJobs{
		sessionRepo: sessionRepo,
		breakRepo:   breakRepo,
		tracker:     tracker,
		policy:      policy,
		loc:         loc,
		retry:       retry.DefaultPolicy,
		now:         time.Now,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", 1*time.Hour, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions closes sessions left open on previous days. Each
// stale session gets the same synthetic checkout a stats read would assume,
// so the stored record and the aggregates agree.
func (j *SessionJobs) AutoCloseStaleSessions(ctx context.Context) error {
	nowLocal := j.now().In(j.loc)

	// Only run at midnight (00:00-00:59 local)
	if nowLocal.Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting auto-close stale sessions job")

	todayStart := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, j.loc)
	stale, err := j.sessionRepo.QueryStaleOpen(ctx, todayStart)
	if err != nil {
		return fmt.Errorf("failed to get stale sessions: %w", err)
	}

	if len(stale) == 0 {
		slog.Info("Cron: No stale sessions found")
		return nil
	}

	closedCount := 0
	for _, s := range stale {
		if err := j.closeStale(ctx, s); err != nil {
			slog.Error("Cron: Failed to auto-close session",
				"session_id", s.ID,
				"user_id", s.UserID,
				"error", err)
			continue
		}
		closedCount++
	}

	slog.Info("Cron: Auto-closed stale sessions", "count", closedCount)
	return nil
}

func (j *SessionJobs) closeStale(ctx context.Context, s session.AttendanceSession) error {
	// A dangling break is closed first, at its default duration.
	open, err := j.breakRepo.FindOpenBySession(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to find open break: %w", err)
	}
	if open != nil {
		end := open.StartTime.Add(time.Duration(j.policy.DefaultMissingBreakHours * float64(time.Hour)))
		status := j.tracker.CloseStatus(end)
		err := j.retry.Do(ctx, func(ctx context.Context) error {
			return j.breakRepo.UpdateEnd(ctx, open.ID, end, status)
		})
		if err != nil && !errors.Is(err, session.ErrBreakNotFound) {
			return fmt.Errorf("failed to close dangling break: %w", err)
		}
	}

	checkout := s.CheckIn.Add(time.Duration(j.policy.DefaultMissingCheckoutHours * float64(time.Hour)))
	err = j.retry.Do(ctx, func(ctx context.Context) error {
		return j.sessionRepo.UpdateCheckout(ctx, s.ID, checkout)
	})
	if errors.Is(err, session.ErrSessionClosed) {
		// Someone closed it between the query and the update.
		return nil
	}
	return err
}
