package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertCompletionArbitratesWithoutError(t *testing.T) {
	// The completion insert runs inside the submission transaction, after
	// the attempt row. A duplicate must resolve to zero rows affected, not
	// to a unique violation: any errored statement aborts the transaction,
	// turns the later COMMIT into a rollback, and loses the attempt row.
	assert.Contains(t, insertCompletionQuery, "ON CONFLICT (lesson_id, user_id) DO NOTHING")
	assert.NotContains(t, strings.ToUpper(insertCompletionQuery), "RETURNING")
}
