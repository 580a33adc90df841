package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-dataops/db/sqldb"
)

func TestCompileSelect(t *testing.T) {
	q := Query{
		Distinct:  true,
		Table:     "users",
		Columns:   []string{"id", "name"},
		Where:     "age > ? AND name <> ?",
		WhereArgs: []any{18, "bob"},
		OrderBy:   []sqldb.OrderBy{{Column: sqldb.NewColumnOrPanic("name")}, {Column: sqldb.NewColumnOrPanic("id"), Desc: true}},
		Limit:     10,
		Offset:    20,
	}

	stmt, err := CompileSelect(q, '?')
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT id, name FROM users WHERE age > ? AND name <> ? ORDER BY name ASC, id DESC LIMIT 10 OFFSET 20", stmt.SQL)
	assert.Equal(t, []any{18, "bob"}, stmt.Args)

	stmt, err = CompileSelect(q, '$')
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "WHERE age > $1 AND name <> $2")
}

func TestCompileSelectAllColumnsGrouped(t *testing.T) {
	stmt, err := CompileSelect(Query{Table: "orders", GroupBy: []string{"customer"}, Having: "count(*) > 1"}, '?')
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders GROUP BY customer HAVING count(*) > 1", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestQueryValidate(t *testing.T) {
	cases := map[string]Query{
		"empty table":     {},
		"bad table":       {Table: "users; drop"},
		"bad column":      {Table: "users", Columns: []string{"1id"}},
		"args mismatch":   {Table: "users", Where: "id = ?"},
		"having no group": {Table: "users", Having: "x"},
		"offset no limit": {Table: "users", Offset: 3},
		"negative limit":  {Table: "users", Limit: -1},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, q.Validate())
		})
	}
	assert.ErrorIs(t, Query{}.Validate(), ErrEmptyTable)
}

func TestPlaceholdersInsideLiteralsAreIgnored(t *testing.T) {
	raw := RawQuery{SQL: "SELECT * FROM t WHERE a = '?' AND b = ?", Args: []any{1}}
	require.NoError(t, raw.Validate())

	stmt, err := CompileRaw(raw, '$')
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = '?' AND b = $1", stmt.SQL)
}

func TestCompileRawRequiresSQL(t *testing.T) {
	_, err := CompileRaw(RawQuery{}, '?')
	assert.ErrorIs(t, err, ErrEmptySQL)
}

func TestCompileWrites(t *testing.T) {
	var v Values
	v.Put("id", 1).Put("name", "alice").Put("name", "bob")
	assert.Equal(t, 2, v.Len())

	stmt, err := CompileInsert(InsertQuery{Table: "users"}, v, '$')
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (id, name) VALUES ($1, $2)", stmt.SQL)
	assert.Equal(t, []any{1, "bob"}, stmt.Args)

	stmt, err = CompileUpdate(UpdateQuery{Table: "users", Where: "id = ?", WhereArgs: []any{1}}, v, '$')
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET id = $1, name = $2 WHERE id = $3", stmt.SQL)
	assert.Equal(t, []any{1, "bob", 1}, stmt.Args)

	stmt, err = CompileDelete(DeleteQuery{Table: "users", Where: "id = ?", WhereArgs: []any{1}}, '?')
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", stmt.SQL)

	_, err = CompileInsert(InsertQuery{Table: "users"}, Values{}, '?')
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestIsMissing(t *testing.T) {
	var q *Query
	var raw *RawQuery
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(q))
	assert.True(t, IsMissing(raw))
	assert.False(t, IsMissing(Query{Table: "t"}))
	assert.False(t, IsMissing(&RawQuery{SQL: "SELECT 1"}))
}
