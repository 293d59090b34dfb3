package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapConstraintCoversActiveStatuses(t *testing.T) {
	stmts := constraints()
	require.Len(t, stmts, 2)

	assert.Contains(t, stmts[0], "btree_gist")

	ddl := stmts[1]
	assert.Contains(t, ddl, "IF NOT EXISTS")
	assert.Contains(t, ddl, "barber_id WITH =")
	assert.Contains(t, ddl, "tstzrange(start_time, end_time) WITH &&")
	assert.Contains(t, ddl, "status IN ('BOOKED','MODIFIED','BLOCKED')")
	assert.False(t, strings.Contains(ddl, "'DONE'"))
	assert.False(t, strings.Contains(ddl, "'CANCELLED'"))
}
