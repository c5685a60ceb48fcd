package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/database"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/retry"
)

type breakRepository struct {
	db *database.DB
}

// Insert implements session.BreakRepository.
func (r *breakRepository) Insert(ctx context.Context, newBreak session.BreakInterval) (session.BreakInterval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO break_intervals (session_id, start_time)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, newBreak.SessionID, newBreak.StartTime).
		Scan(&newBreak.ID, &newBreak.CreatedAt)
	if err != nil {
		return session.BreakInterval{}, fmt.Errorf("failed to create break: %w", err)
	}

	return newBreak, nil
}

// UpdateEnd implements session.BreakRepository. "Close this break if still
// open": retrying the same close is a no-op that reports ErrBreakNotFound.
func (r *breakRepository) UpdateEnd(ctx context.Context, id string, end time.Time, status session.BreakStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE break_intervals
		SET end_time = $2, status = $3
		WHERE id = $1
		  AND end_time IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, end, status).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrBreakNotFound
		}
		return retry.Transient(fmt.Errorf("failed to update break end: %w", err))
	}

	return nil
}

// FindOpenBySession implements session.BreakRepository.
func (r *breakRepository) FindOpenBySession(ctx context.Context, sessionID string) (*session.BreakInterval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, session_id, start_time, end_time, COALESCE(status, ''), created_at
		FROM break_intervals
		WHERE session_id = $1
		  AND end_time IS NULL
		LIMIT 1
	`

	var b session.BreakInterval
	err := q.QueryRow(ctx, query, sessionID).Scan(
		&b.ID, &b.SessionID, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no open break
		}
		return nil, fmt.Errorf("failed to find open break: %w", err)
	}

	return &b, nil
}

// QueryBySessions implements session.BreakRepository.
func (r *breakRepository) QueryBySessions(ctx context.Context, sessionIDs []string) ([]session.BreakInterval, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, session_id, start_time, end_time, COALESCE(status, ''), created_at
		FROM break_intervals
		WHERE session_id = ANY($1)
		ORDER BY start_time ASC
	`

	rows, err := q.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query breaks: %w", err)
	}
	defer rows.Close()

	var breaks []session.BreakInterval
	for rows.Next() {
		var b session.BreakInterval
		err := rows.Scan(&b.ID, &b.SessionID, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		breaks = append(breaks, b)
	}

	return breaks, rows.Err()
}

func NewBreakRepository(db *database.DB) session.BreakRepository {
	return &breakRepository{db: db}
}
