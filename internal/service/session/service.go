package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saudkhanbpk/EMS-sub000/internal/config"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/database"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geo"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geoloc"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/retry"
	"github.com/saudkhanbpk/EMS-sub000/internal/repository/postgresql"
)

type SessionServiceImpl struct {
	db *database.DB
	session.SessionRepository
	session.BreakRepository
	provider geoloc.Provider
	breaks   *BreakTracker
	policy   config.AttendanceConfig
	loc      *time.Location
	retry    retry.Policy

	// clock, swappable in tests
	now func() time.Time
}

func NewSessionService(
	db *database.DB,
	sessionRepo session.SessionRepository,
	breakRepo session.BreakRepository,
	provider geoloc.Provider,
	tracker *BreakTracker,
	policy config.AttendanceConfig,
	loc *time.Location,
) session.SessionService {
	if loc == nil {
		loc = time.UTC
	}
	if tracker == nil {
		tracker = NewBreakTracker(policy.LateBreakEndCutoff, policy.DefaultMissingBreakHours, loc)
	}
	return &SessionServiceImpl{
		db:                db,
		SessionRepository: sessionRepo,
		BreakRepository:   breakRepo,
		provider:          provider,
		breaks:            tracker,
		policy:            policy,
		loc:               loc,
		retry:             retry.DefaultPolicy,
		now:               time.Now,
	}
}

// CheckIn implements session.SessionService.
func (s *SessionServiceImpl) CheckIn(ctx context.Context, req session.CheckInRequest) (session.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return session.SessionResponse{}, err
	}

	nowLocal := s.now().In(s.loc)
	dayStart, dayEnd := dayBounds(nowLocal)

	open, err := s.SessionRepository.FindOpen(ctx, req.UserID, req.Kind, dayStart, dayEnd)
	if err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to check for open session: %w", err)
	}
	if open != nil {
		return session.SessionResponse{}, session.ErrAlreadyCheckedIn
	}

	// Overtime may not start while a regular session is active. The
	// converse is not enforced.
	if req.Kind == session.KindOvertime {
		regOpen, err := s.SessionRepository.FindOpen(ctx, req.UserID, session.KindRegular, dayStart, dayEnd)
		if err != nil {
			return session.SessionResponse{}, fmt.Errorf("failed to check for open regular session: %w", err)
		}
		if regOpen != nil {
			return session.SessionResponse{}, session.ErrRegularSessionOpen
		}
	}

	coord, err := s.resolveCoordinate(ctx, req)
	if err != nil {
		// No partial write: the session row is only inserted after the
		// location resolves.
		return session.SessionResponse{}, err
	}

	status := session.StatusPresent
	if nowLocal.Hour()*60+nowLocal.Minute() > s.policy.LateCheckInCutoff {
		status = session.StatusLate
	}

	workMode := geo.Classify(
		coord.Latitude, coord.Longitude,
		s.policy.OfficeLatitude, s.policy.OfficeLongitude,
		s.policy.GeofenceRadiusKm,
	)

	data := session.AttendanceSession{
		UserID:    req.UserID,
		Kind:      req.Kind,
		CheckIn:   nowLocal,
		WorkMode:  workMode,
		Status:    status,
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
	}

	created, err := s.SessionRepository.Insert(ctx, data)
	if err != nil {
		if errors.Is(err, session.ErrCheckInConflict) {
			return session.SessionResponse{}, session.ErrCheckInConflict
		}
		return session.SessionResponse{}, fmt.Errorf("failed to create session record: %w", err)
	}

	return session.ToResponse(created), nil
}

// resolveCoordinate prefers the reading carried on the request and falls
// back to the configured provider bounded by the policy timeout.
func (s *SessionServiceImpl) resolveCoordinate(ctx context.Context, req session.CheckInRequest) (geoloc.Coordinate, error) {
	if req.Latitude != nil && req.Longitude != nil {
		return geoloc.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}, nil
	}

	if s.provider == nil {
		return geoloc.Coordinate{}, session.ErrLocationUnavailable
	}

	coord, err := geoloc.Read(ctx, s.provider, s.policy.GeoReadTimeout)
	if err != nil {
		return geoloc.Coordinate{}, fmt.Errorf("%w: %v", session.ErrLocationUnavailable, err)
	}
	if !geo.ValidCoordinate(coord.Latitude, coord.Longitude) {
		return geoloc.Coordinate{}, session.ErrLocationUnavailable
	}
	return coord, nil
}

// StartBreak implements session.SessionService.
func (s *SessionServiceImpl) StartBreak(ctx context.Context, ref session.SessionRef) (session.BreakResponse, error) {
	if err := ref.Validate(); err != nil {
		return session.BreakResponse{}, err
	}

	sess, err := s.resolveSession(ctx, ref)
	if err != nil {
		return session.BreakResponse{}, err
	}
	if !sess.Open() {
		return session.BreakResponse{}, session.ErrSessionClosed
	}

	open, err := s.BreakRepository.FindOpenBySession(ctx, sess.ID)
	if err != nil {
		return session.BreakResponse{}, fmt.Errorf("failed to check for open break: %w", err)
	}
	if err := s.breaks.EnsureCanStart(open); err != nil {
		return session.BreakResponse{}, err
	}

	created, err := s.BreakRepository.Insert(ctx, session.BreakInterval{
		SessionID: sess.ID,
		StartTime: s.now().In(s.loc),
	})
	if err != nil {
		return session.BreakResponse{}, fmt.Errorf("failed to create break record: %w", err)
	}

	return session.ToBreakResponse(created), nil
}

// EndBreak implements session.SessionService.
func (s *SessionServiceImpl) EndBreak(ctx context.Context, ref session.SessionRef) (session.BreakResponse, error) {
	if err := ref.Validate(); err != nil {
		return session.BreakResponse{}, err
	}

	sess, err := s.resolveSession(ctx, ref)
	if err != nil {
		return session.BreakResponse{}, err
	}

	open, err := s.BreakRepository.FindOpenBySession(ctx, sess.ID)
	if err != nil {
		return session.BreakResponse{}, fmt.Errorf("failed to check for open break: %w", err)
	}
	if open == nil {
		return session.BreakResponse{}, session.ErrNoOpenBreak
	}

	now := s.now().In(s.loc)
	status := s.breaks.CloseStatus(now)

	if err := s.closeBreak(ctx, open.ID, now, status); err != nil {
		return session.BreakResponse{}, err
	}

	open.EndTime = &now
	open.Status = status
	return session.ToBreakResponse(*open), nil
}

// CheckOut implements session.SessionService.
func (s *SessionServiceImpl) CheckOut(ctx context.Context, ref session.SessionRef) (session.SessionResponse, error) {
	if err := ref.Validate(); err != nil {
		return session.SessionResponse{}, err
	}

	sess, err := s.resolveSession(ctx, ref)
	if err != nil {
		return session.SessionResponse{}, err
	}
	if !sess.Open() {
		return session.SessionResponse{}, session.ErrSessionClosed
	}

	now := s.now().In(s.loc)

	// Never leave a break open after checkout.
	open, err := s.BreakRepository.FindOpenBySession(ctx, sess.ID)
	if err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to check for open break: %w", err)
	}
	breakStatus := s.breaks.CloseStatus(now)

	// The forced break close and the checkout commit together. Both are
	// conditional writes ("close if still open"), so the transaction as a
	// whole retries safely; a break already closed by an earlier attempt is
	// not an error here.
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		return s.withTx(ctx, func(ctx context.Context) error {
			if open != nil {
				if err := s.BreakRepository.UpdateEnd(ctx, open.ID, now, breakStatus); err != nil && !errors.Is(err, session.ErrBreakNotFound) {
					return err
				}
			}
			return s.SessionRepository.UpdateCheckout(ctx, sess.ID, now)
		})
	})
	if err != nil {
		if errors.Is(err, session.ErrSessionClosed) || errors.Is(err, session.ErrSessionNotFound) {
			return session.SessionResponse{}, err
		}
		return session.SessionResponse{}, fmt.Errorf("failed to update session checkout: %w", err)
	}

	sess.CheckOut = &now
	return session.ToResponse(sess), nil
}

// withTx runs fn inside a database transaction, exposing the tx to the
// repositories through the context. Services constructed without a pool run
// fn directly against the backing store.
func (s *SessionServiceImpl) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// closeBreak closes a break with retry; the underlying update is a
// conditional write ("close if still open") so at-least-once delivery is
// safe.
func (s *SessionServiceImpl) closeBreak(ctx context.Context, id string, end time.Time, status session.BreakStatus) error {
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.BreakRepository.UpdateEnd(ctx, id, end, status)
	})
	if err != nil {
		if errors.Is(err, session.ErrBreakNotFound) {
			return session.ErrBreakNotFound
		}
		return fmt.Errorf("failed to close break: %w", err)
	}
	return nil
}

// GetOpenSession implements session.SessionService.
func (s *SessionServiceImpl) GetOpenSession(ctx context.Context, userID string, kind session.Kind) (*session.SessionResponse, error) {
	if kind == "" {
		kind = session.KindRegular
	}

	dayStart, dayEnd := dayBounds(s.now().In(s.loc))
	open, err := s.SessionRepository.FindOpen(ctx, userID, kind, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	resp := session.ToResponse(*open)
	return &resp, nil
}

// ListSessions implements session.SessionService.
func (s *SessionServiceImpl) ListSessions(ctx context.Context, userID string, filter session.SessionFilter) ([]session.SessionResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	start := now.AddDate(0, -1, 0)
	end := now
	if filter.StartDate != nil {
		start, _ = time.ParseInLocation("2006-01-02", *filter.StartDate, s.loc)
	}
	if filter.EndDate != nil {
		d, _ := time.ParseInLocation("2006-01-02", *filter.EndDate, s.loc)
		end = d.AddDate(0, 0, 1).Add(-time.Second)
	}

	sessions, err := s.SessionRepository.Query(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	responses := make([]session.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		if filter.Kind != nil && string(sess.Kind) != *filter.Kind {
			continue
		}
		responses = append(responses, session.ToResponse(sess))
	}
	return responses, nil
}

// resolveSession loads the session a break or checkout operation targets.
// A client-held id may be stale after a reload; when it does not resolve to
// a session owned by the caller, the current open session is re-resolved
// from the store instead of failing permanently.
func (s *SessionServiceImpl) resolveSession(ctx context.Context, ref session.SessionRef) (session.AttendanceSession, error) {
	if ref.SessionID != "" {
		sess, err := s.SessionRepository.GetByID(ctx, ref.SessionID)
		if err == nil && sess.UserID == ref.UserID {
			return sess, nil
		}
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			return session.AttendanceSession{}, fmt.Errorf("failed to get session: %w", err)
		}
		// stale id: fall through to open-session resolution
	}

	kind := ref.Kind
	if kind == "" {
		kind = session.KindRegular
	}

	dayStart, dayEnd := dayBounds(s.now().In(s.loc))
	open, err := s.SessionRepository.FindOpen(ctx, ref.UserID, kind, dayStart, dayEnd)
	if err != nil {
		return session.AttendanceSession{}, fmt.Errorf("failed to find open session: %w", err)
	}
	if open == nil {
		return session.AttendanceSession{}, session.ErrSessionNotFound
	}
	return *open, nil
}

// dayBounds returns the local calendar-day window [midnight, next midnight).
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
