package sqlstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tracker/internal/repository"
	"tracker/internal/repository/migrations"
)

func TestQueries_Postgres(t *testing.T) {
	q := NewQueries(migrations.Postgres)

	assert.Contains(t, q.InsertTimeEntry, "$4::date")
	assert.Contains(t, q.InsertTimeEntry, "$6::time")
	assert.Contains(t, q.GetTimeEntry, "to_char(day, 'YYYY-MM-DD')")
	assert.Contains(t, q.GetTimeEntry, "WHERE id = $1 AND user_id = $2")
}

func TestQueries_Search(t *testing.T) {
	q := NewQueries(migrations.Postgres)
	day := "2024-03-15"
	client := int64(3)

	query, args := q.Search("u1", repository.SearchOptions{Day: &day, ClientID: &client, ClosedOnly: true})

	assert.Contains(t, query, "user_id = $1")
	assert.Contains(t, query, "day = $2::date")
	assert.Contains(t, query, "client_id = $3 AND user_id = $4")
	assert.Contains(t, query, "stop IS NOT NULL")
	assert.True(t, strings.HasSuffix(query, "ORDER BY day ASC, start ASC, id ASC"))
	assert.Equal(t, []interface{}{"u1", "2024-03-15", int64(3), "u1"}, args)
}

func TestQueries_MySQLPlaceholders(t *testing.T) {
	q := NewQueries(migrations.MySQL)

	assert.NotContains(t, q.UpdateTimeEntry, "$")
	assert.Contains(t, q.ListActive, "TIME_FORMAT(stop, '%H:%i:%s')")
}
