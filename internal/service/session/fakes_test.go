package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geoloc"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/retry"
)

// fakeSessionRepo is an in-memory session.SessionRepository used by service
// tests. transientFailures injects retryable errors on conditional writes.
type fakeSessionRepo struct {
	mu                sync.Mutex
	sessions          map[string]session.AttendanceSession
	transientFailures int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]session.AttendanceSession)}
}

func (r *fakeSessionRepo) Insert(ctx context.Context, s session.AttendanceSession) (session.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.sessions[s.ID] = s
	return s, nil
}

func (r *fakeSessionRepo) UpdateCheckout(ctx context.Context, id string, checkout time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transientFailures > 0 {
		r.transientFailures--
		return retry.Transient(context.DeadlineExceeded)
	}

	s, ok := r.sessions[id]
	if !ok {
		return session.ErrSessionNotFound
	}
	if s.CheckOut != nil {
		return session.ErrSessionClosed
	}
	s.CheckOut = &checkout
	r.sessions[id] = s
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (session.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return session.AttendanceSession{}, session.ErrSessionNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) FindOpen(ctx context.Context, userID string, kind session.Kind, dayStart, dayEnd time.Time) (*session.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.UserID != userID || s.Kind != kind || !s.Open() {
			continue
		}
		if s.CheckIn.Before(dayStart) || !s.CheckIn.Before(dayEnd) {
			continue
		}
		found := s
		return &found, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) Query(ctx context.Context, userID string, start, end time.Time) ([]session.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []session.AttendanceSession
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		if s.CheckIn.Before(start) || s.CheckIn.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) QueryAll(ctx context.Context, start, end time.Time) ([]session.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []session.AttendanceSession
	for _, s := range r.sessions {
		if s.CheckIn.Before(start) || s.CheckIn.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) QueryStaleOpen(ctx context.Context, before time.Time) ([]session.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []session.AttendanceSession
	for _, s := range r.sessions {
		if s.Open() && s.CheckIn.Before(before) {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeBreakRepo is an in-memory session.BreakRepository.
type fakeBreakRepo struct {
	mu                sync.Mutex
	breaks            map[string]session.BreakInterval
	transientFailures int
}

func newFakeBreakRepo() *fakeBreakRepo {
	return &fakeBreakRepo{breaks: make(map[string]session.BreakInterval)}
}

func (r *fakeBreakRepo) Insert(ctx context.Context, b session.BreakInterval) (session.BreakInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	r.breaks[b.ID] = b
	return b, nil
}

func (r *fakeBreakRepo) UpdateEnd(ctx context.Context, id string, end time.Time, status session.BreakStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transientFailures > 0 {
		r.transientFailures--
		return retry.Transient(context.DeadlineExceeded)
	}

	b, ok := r.breaks[id]
	if !ok || b.EndTime != nil {
		return session.ErrBreakNotFound
	}
	b.EndTime = &end
	b.Status = status
	r.breaks[id] = b
	return nil
}

func (r *fakeBreakRepo) FindOpenBySession(ctx context.Context, sessionID string) (*session.BreakInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.breaks {
		if b.SessionID == sessionID && b.Open() {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeBreakRepo) QueryBySessions(ctx context.Context, sessionIDs []string) ([]session.BreakInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		ids[id] = true
	}

	var out []session.BreakInterval
	for _, b := range r.breaks {
		if ids[b.SessionID] {
			out = append(out, b)
		}
	}
	return out, nil
}

// stuckProvider never answers; reads against it time out.
type stuckProvider struct{}

func (stuckProvider) CurrentCoordinate(ctx context.Context) (geoloc.Coordinate, error) {
	<-ctx.Done()
	return geoloc.Coordinate{}, ctx.Err()
}
