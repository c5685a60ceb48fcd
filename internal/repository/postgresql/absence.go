package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saudkhanbpk/EMS-sub000/internal/domain/absence"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/database"
)

type absenceRepository struct {
	db *database.DB
}

const absenceColumns = `id, user_id, date, type, COALESCE(timing, ''), created_at`

func scanAbsence(row pgx.Row) (absence.AbsenceRecord, error) {
	var a absence.AbsenceRecord
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.Type, &a.Timing, &a.CreatedAt)
	return a, err
}

// Insert implements absence.AbsenceRepository.
func (r *absenceRepository) Insert(ctx context.Context, record absence.AbsenceRecord) (absence.AbsenceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO absence_records (user_id, date, type, timing)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, record.UserID, record.Date, record.Type, record.Timing).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return absence.AbsenceRecord{}, fmt.Errorf("failed to create absence record: %w", err)
	}

	return record, nil
}

// Query implements absence.AbsenceRepository.
func (r *absenceRepository) Query(ctx context.Context, userID string, start, end time.Time) ([]absence.AbsenceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM absence_records
		WHERE user_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC
	`, absenceColumns)

	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence records: %w", err)
	}
	defer rows.Close()

	return collectAbsences(rows)
}

// QueryAll implements absence.AbsenceRepository.
func (r *absenceRepository) QueryAll(ctx context.Context, start, end time.Time) ([]absence.AbsenceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM absence_records
		WHERE date >= $1
		  AND date <= $2
		ORDER BY user_id ASC, date ASC
	`, absenceColumns)

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence records: %w", err)
	}
	defer rows.Close()

	return collectAbsences(rows)
}

func collectAbsences(rows pgx.Rows) ([]absence.AbsenceRecord, error) {
	var records []absence.AbsenceRecord
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence record: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func NewAbsenceRepository(db *database.DB) absence.AbsenceRepository {
	return &absenceRepository{db: db}
}
