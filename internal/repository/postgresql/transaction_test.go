package postgresql

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/database"
	"github.com/stretchr/testify/assert"
)

type stubTx struct{ pgx.Tx }

func TestGetQuerier_PrefersTransactionFromContext(t *testing.T) {
	db := &database.DB{}
	tx := stubTx{}

	ctx := context.WithValue(context.Background(), "tx", pgx.Tx(tx))
	assert.Equal(t, tx, GetQuerier(ctx, db))

	// Without a transaction in the context the pool serves the query.
	assert.Equal(t, db.Pool, GetQuerier(context.Background(), db))
}
