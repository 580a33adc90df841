package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/ops"
	"github.com/zeptools/gw-dataops/query"
)

type stmt struct {
	sql  string
	args []any
}

// recorder is an sqldb.Handle and sqldb.Tx that records statements.
type recorder struct {
	log        *[]stmt
	affected   int64
	lastID     int64
	lastIDErr  error
	returnedID int64
	committed  bool
	rolledBack bool
}

func (r *recorder) Exec(_ context.Context, sql string, args ...any) (sqldb.Result, error) {
	*r.log = append(*r.log, stmt{sql, args})
	return result{affected: r.affected, lastID: r.lastID, lastIDErr: r.lastIDErr}, nil
}

func (r *recorder) QueryRows(_ context.Context, sql string, args ...any) (sqldb.Rows, error) {
	*r.log = append(*r.log, stmt{sql, args})
	return &idRows{id: r.returnedID}, nil
}

func (r *recorder) Listen(context.Context, string) (<-chan sqldb.Notification, error) {
	return nil, sqldb.ErrNotSupported
}

func (r *recorder) Commit(context.Context) error { r.committed = true; return nil }
func (r *recorder) Rollback(context.Context) error { r.rolledBack = true; return nil }

type result struct {
	affected  int64
	lastID    int64
	lastIDErr error
}

func (r result) RowsAffected() (int64, error) { return r.affected, nil }
func (r result) LastInsertId() (int64, error) { return r.lastID, r.lastIDErr }

// idRows yields one row holding id.
type idRows struct {
	id     int64
	read   bool
	closed bool
}

func (r *idRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *idRows) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.id
	return nil
}

func (r *idRows) Close() error { r.closed = true; return nil }
func (r *idRows) Err() error { return nil }

type fakeClient struct {
	conf   *sqldb.Conf
	handle *recorder
	tx     *recorder
}

func newFakeClient(dbType string) (*fakeClient, *[]stmt) {
	var log []stmt
	return &fakeClient{
		conf:   &sqldb.Conf{Type: dbType},
		handle: &recorder{log: &log, affected: 2, lastID: 11, returnedID: 21},
		tx:     &recorder{log: &log, affected: 1},
	}, &log
}

func (c *fakeClient) Init() error { return nil }
func (c *fakeClient) Close() error { return nil }
func (c *fakeClient) GetHandle() sqldb.Handle { return c.handle }
func (c *fakeClient) GetConf() *sqldb.Conf { return c.conf }
func (c *fakeClient) BeginTx(context.Context) (sqldb.Tx, error) {
	return c.tx, nil
}

type failingBus struct{ notified int }

func (b *failingBus) Notify(context.Context, changes.Changes) error {
	b.notified++
	return errors.New("bus down")
}

func (b *failingBus) Observe(context.Context, changes.Filter) (<-chan changes.Changes, error) {
	return nil, errors.New("bus down")
}

func values(kv ...any) query.Values {
	var v query.Values
	for i := 0; i < len(kv); i += 2 {
		v.Put(kv[i].(string), kv[i+1])
	}
	return v
}

func TestQueryCompilesForDialect(t *testing.T) {
	client, log := newFakeClient("pgsql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)

	_, err = s.Query(context.Background(), query.Query{Table: "users", Where: "id = ? AND name = ?", WhereArgs: []any{1, "ann"}})
	require.NoError(t, err)
	require.Len(t, *log, 1)
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND name = $2", (*log)[0].sql)
	assert.Equal(t, []any{1, "ann"}, (*log)[0].args)
}

func TestInsertUsesLastInsertID(t *testing.T) {
	client, log := newFakeClient("mysql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)

	id, err := s.Insert(context.Background(), query.InsertQuery{Table: "users"}, values("name", "ann"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, "INSERT INTO users (name) VALUES (?)", (*log)[0].sql)
}

func TestInsertWithoutLastInsertIDSupport(t *testing.T) {
	client, _ := newFakeClient("mysql")
	client.handle.lastIDErr = sqldb.ErrNotSupported
	s, err := New(client, nil, nil)
	require.NoError(t, err)

	id, err := s.Insert(context.Background(), query.InsertQuery{Table: "users"}, values("name", "ann"))
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestInsertReturningOnPgsql(t *testing.T) {
	client, log := newFakeClient("pgsql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)

	id, err := s.Insert(context.Background(), query.InsertQuery{Table: "users", IDColumn: "id"}, values("name", "ann"))
	require.NoError(t, err)
	assert.Equal(t, int64(21), id)
	assert.Equal(t, "INSERT INTO users (name) VALUES ($1) RETURNING id", (*log)[0].sql)
}

func TestUpdateDeleteExecReportRowsAffected(t *testing.T) {
	client, log := newFakeClient("mysql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	n, err := s.Update(ctx, query.UpdateQuery{Table: "users", Where: "id = ?", WhereArgs: []any{1}}, values("name", "bob"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "UPDATE users SET name = ? WHERE id = ?", (*log)[0].sql)
	assert.Equal(t, []any{"bob", 1}, (*log)[0].args)

	n, err = s.Delete(ctx, query.DeleteQuery{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "DELETE FROM users", (*log)[1].sql)

	_, err = s.ExecSQL(ctx, query.RawQuery{SQL: "TRUNCATE users"})
	require.NoError(t, err)
	assert.Equal(t, "TRUNCATE users", (*log)[2].sql)
}

func TestInvalidDescriptorNeverReachesHandle(t *testing.T) {
	client, log := newFakeClient("mysql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)

	_, err = s.Insert(context.Background(), query.InsertQuery{Table: "users"}, query.Values{})
	assert.ErrorIs(t, err, query.ErrNoValues)
	assert.Empty(t, *log)
}

func TestTransactionRunsOnTx(t *testing.T) {
	client, log := newFakeClient("mysql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)
	require.True(t, s.TransactionsEnabled())

	tx, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	n, err := tx.Delete(context.Background(), query.DeleteQuery{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit(context.Background()))
	assert.True(t, client.tx.committed)
	assert.Len(t, *log, 1)
}

func TestWithoutTransactions(t *testing.T) {
	client, _ := newFakeClient("mysql")
	s, err := New(client, nil, nil, WithoutTransactions())
	require.NoError(t, err)
	assert.False(t, s.TransactionsEnabled())
}

func TestNotifyFailureIsNotFatal(t *testing.T) {
	client, _ := newFakeClient("mysql")
	bus := &failingBus{}
	mappings := ops.NewTypeMappings()
	ops.RegisterTypeMapping(mappings, ops.TypeMapping[string]{
		Delete: ops.DefaultDeleteResolver[string]{MapToDeleteQuery: func(name string) query.DeleteQuery {
			return query.DeleteQuery{Table: "users", Where: "name = ?", WhereArgs: []any{name}}
		}},
	})
	s, err := New(client, bus, mappings)
	require.NoError(t, err)

	del, err := ops.PrepareDeleteObject(s, "ann", ops.DeleteConf[string]{})
	require.NoError(t, err)
	r, err := del.ExecuteBlocking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.RowsDeleted())
	assert.Equal(t, 1, bus.notified)
}

func TestObserveWithoutBus(t *testing.T) {
	client, _ := newFakeClient("mysql")
	s, err := New(client, nil, nil)
	require.NoError(t, err)
	_, err = s.ObserveChanges(context.Background(), changes.Filter{Tables: []string{"users"}})
	assert.ErrorIs(t, err, ErrNoBus)
}

func TestNewRejectsUninitialisedClient(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}
