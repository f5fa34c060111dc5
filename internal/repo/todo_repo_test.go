package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	assert.Equal("ORDER BY created_at DESC, id ASC",
		orderClause(ListParams{SortColumn: "created_at", Desc: true}))
	assert.Equal("ORDER BY created_at ASC, id ASC",
		orderClause(ListParams{SortColumn: "created_at"}))
	assert.Equal("ORDER BY updated_at DESC, id ASC",
		orderClause(ListParams{SortColumn: "updated_at", Desc: true}))
	assert.Equal("ORDER BY updated_at ASC, id ASC",
		orderClause(ListParams{SortColumn: "updated_at"}))
}

func TestOrderClauseUnknownColumnFallsBack(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	// only whitelisted columns reach the query text
	assert.Equal("ORDER BY created_at DESC, id ASC",
		orderClause(ListParams{SortColumn: "title; DROP TABLE todos", Desc: true}))
}
