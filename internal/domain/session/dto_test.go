package session

import (
	"testing"

	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRef_Validate(t *testing.T) {
	ref := SessionRef{UserID: "0198c5a0-0000-7000-8000-000000000001"}
	assert.NoError(t, ref.Validate())

	// A stale id is acceptable, a malformed one is not.
	ref.SessionID = "0198c5a0-dead-7000-8000-00000000beef"
	assert.NoError(t, ref.Validate())

	ref.SessionID = "not-a-uuid"
	err := ref.Validate()
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "session_id", errs[0].Field)
}
