package absence

import (
	"context"
	"time"
)

// AbsenceRepository exposes absence records to the aggregation engine.
// Writes happen in the absence-reporting workflow that fronts this store;
// Insert exists for that workflow and for test fixtures.
type AbsenceRepository interface {
	Insert(ctx context.Context, record AbsenceRecord) (AbsenceRecord, error)

	// Query returns one user's absence records dated in [start, end].
	Query(ctx context.Context, userID string, start, end time.Time) ([]AbsenceRecord, error)

	// QueryAll is the batch variant over every user.
	QueryAll(ctx context.Context, start, end time.Time) ([]AbsenceRecord, error)
}
