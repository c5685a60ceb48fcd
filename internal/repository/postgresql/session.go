package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/database"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/retry"
)

type sessionRepository struct {
	db *database.DB
}

const sessionColumns = `id, user_id, kind, check_in, check_out, work_mode, status,
	   latitude, longitude, created_at, updated_at`

func scanSession(row pgx.Row) (session.AttendanceSession, error) {
	var s session.AttendanceSession
	err := row.Scan(
		&s.ID, &s.UserID, &s.Kind, &s.CheckIn, &s.CheckOut, &s.WorkMode, &s.Status,
		&s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Insert implements session.SessionRepository.
func (r *sessionRepository) Insert(ctx context.Context, newSession session.AttendanceSession) (session.AttendanceSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_sessions (
			user_id, kind, check_in, work_mode, status, latitude, longitude
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newSession.UserID,
		newSession.Kind,
		newSession.CheckIn,
		newSession.WorkMode,
		newSession.Status,
		newSession.Latitude,
		newSession.Longitude,
	).Scan(&newSession.ID, &newSession.CreatedAt, &newSession.UpdatedAt)

	if err != nil {
		// The partial unique index on open sessions rejects a concurrent
		// check-in of the same kind.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return session.AttendanceSession{}, session.ErrCheckInConflict
		}
		return session.AttendanceSession{}, fmt.Errorf("failed to create session: %w", err)
	}

	return newSession, nil
}

// UpdateCheckout implements session.SessionRepository. The write is
// conditional on the session still being open, so retries cannot close a
// session twice.
func (r *sessionRepository) UpdateCheckout(ctx context.Context, id string, checkout time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET check_out = $2, updated_at = $3
		WHERE id = $1
		  AND check_out IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, checkout, time.Now()).Scan(&updatedID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return retry.Transient(fmt.Errorf("failed to update session checkout: %w", err))
	}

	// No open row: distinguish closed from missing.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return session.ErrSessionClosed
}

// GetByID implements session.SessionRepository.
func (r *sessionRepository) GetByID(ctx context.Context, id string) (session.AttendanceSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE id = $1`

	s, err := scanSession(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.AttendanceSession{}, session.ErrSessionNotFound
		}
		return session.AttendanceSession{}, fmt.Errorf("failed to get session by ID: %w", err)
	}

	return s, nil
}

// FindOpen implements session.SessionRepository.
func (r *sessionRepository) FindOpen(ctx context.Context, userID string, kind session.Kind, dayStart, dayEnd time.Time) (*session.AttendanceSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE user_id = $1
		  AND kind = $2
		  AND check_out IS NULL
		  AND check_in >= $3
		  AND check_in < $4
		ORDER BY check_in DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, userID, kind, dayStart, dayEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no open session
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}

	return &s, nil
}

// Query implements session.SessionRepository.
func (r *sessionRepository) Query(ctx context.Context, userID string, start, end time.Time) ([]session.AttendanceSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE user_id = $1
		  AND check_in >= $2
		  AND check_in <= $3
		ORDER BY check_in ASC
	`

	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// QueryAll implements session.SessionRepository.
func (r *sessionRepository) QueryAll(ctx context.Context, start, end time.Time) ([]session.AttendanceSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE check_in >= $1
		  AND check_in <= $2
		ORDER BY user_id, check_in ASC
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// QueryStaleOpen implements session.SessionRepository.
func (r *sessionRepository) QueryStaleOpen(ctx context.Context, before time.Time) ([]session.AttendanceSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE check_out IS NULL
		  AND check_in < $1
		ORDER BY check_in ASC
	`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale open sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]session.AttendanceSession, error) {
	var sessions []session.AttendanceSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func NewSessionRepository(db *database.DB) session.SessionRepository {
	return &sessionRepository{db: db}
}
