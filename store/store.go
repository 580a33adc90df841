// Package store assembles an ops.Store from an SQL client, a change bus and a type mapping registry.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/ops"
	"github.com/zeptools/gw-dataops/query"
)

// Dialects that read generated keys back with INSERT ... RETURNING.
var returningDBTypes = map[string]bool{
	"pgsql":  true,
	"duckdb": true,
}

var ErrNoBus = errors.New("store has no change bus")

type Store struct {
	executor
	client   sqldb.Client
	bus      changes.Bus
	mappings *ops.TypeMappings
	noTx     bool
}

// Ensure Store implements ops.Store
var _ ops.Store = (*Store)(nil)

type Option func(*Store)

// WithoutTransactions makes bulk writes run statement by statement.
func WithoutTransactions() Option {
	return func(s *Store) { s.noTx = true }
}

// New returns a Store over an initialised client. bus may be nil, in which
// case writes are not announced and Observe fails.
func New(client sqldb.Client, bus changes.Bus, mappings *ops.TypeMappings, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("store: nil sql client")
	}
	handle := client.GetHandle()
	if handle == nil {
		return nil, errors.New("store: sql client not initialised")
	}
	if mappings == nil {
		mappings = ops.NewTypeMappings()
	}
	dbType := ""
	if conf := client.GetConf(); conf != nil {
		dbType = conf.Type
	}
	s := &Store{
		executor: executor{
			ex:        handle,
			prefix:    sqldb.PlaceholderPrefix(dbType),
			returning: returningDBTypes[dbType],
		},
		client:   client,
		bus:      bus,
		mappings: mappings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Mappings() *ops.TypeMappings { return s.mappings }

func (s *Store) BeginTx(ctx context.Context) (ops.Tx, error) {
	raw, err := s.client.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &tx{executor: executor{ex: raw, prefix: s.prefix, returning: s.returning}, raw: raw}, nil
}

// TransactionsEnabled is false only when the store was built WithoutTransactions.
// Every backend here can run transactions.
func (s *Store) TransactionsEnabled() bool { return !s.noTx }

func (s *Store) NotifyAboutChanges(ctx context.Context, c changes.Changes) {
	if s.bus == nil || c.Empty() {
		return
	}
	if err := s.bus.Notify(ctx, c); err != nil {
		log.Printf("[WARN] failed to notify %s: %v", c, err)
	}
}

func (s *Store) ObserveChanges(ctx context.Context, f changes.Filter) (<-chan changes.Changes, error) {
	if s.bus == nil {
		return nil, ErrNoBus
	}
	return s.bus.Observe(ctx, f)
}

func (s *Store) TypeMapping(t reflect.Type) (any, bool) { return s.mappings.Lookup(t) }

type tx struct {
	executor
	raw sqldb.Tx
}

func (t *tx) Commit(ctx context.Context) error { return t.raw.Commit(ctx) }

func (t *tx) Rollback(ctx context.Context) error { return t.raw.Rollback(ctx) }

// executor compiles descriptors for one dialect and runs them on a handle or a transaction.
type executor struct {
	ex        sqldb.Executor
	prefix    byte
	returning bool
}

func (e executor) Query(ctx context.Context, q query.Query) (sqldb.Rows, error) {
	stmt, err := query.CompileSelect(q, e.prefix)
	if err != nil {
		return nil, err
	}
	traceStatement(stmt)
	return e.ex.QueryRows(ctx, stmt.SQL, stmt.Args...)
}

func (e executor) RawQuery(ctx context.Context, q query.RawQuery) (sqldb.Rows, error) {
	stmt, err := query.CompileRaw(q, e.prefix)
	if err != nil {
		return nil, err
	}
	traceStatement(stmt)
	return e.ex.QueryRows(ctx, stmt.SQL, stmt.Args...)
}

func (e executor) Insert(ctx context.Context, q query.InsertQuery, v query.Values) (int64, error) {
	stmt, err := query.CompileInsert(q, v, e.prefix)
	if err != nil {
		return 0, err
	}
	traceStatement(stmt)
	if e.returning {
		if q.IDColumn == "" {
			_, err = e.ex.Exec(ctx, stmt.SQL, stmt.Args...)
			return 0, err
		}
		return e.insertReturning(ctx, stmt, q.IDColumn)
	}
	result, err := e.ex.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if errors.Is(err, sqldb.ErrNotSupported) {
		return 0, nil
	}
	return id, err
}

func (e executor) insertReturning(ctx context.Context, stmt query.Statement, idColumn string) (id int64, err error) {
	rows, err := e.ex.QueryRows(ctx, stmt.SQL+" RETURNING "+idColumn, stmt.Args...)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("insert returned no %s", idColumn)
	}
	if err = rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (e executor) Update(ctx context.Context, q query.UpdateQuery, v query.Values) (int64, error) {
	stmt, err := query.CompileUpdate(q, v, e.prefix)
	if err != nil {
		return 0, err
	}
	return e.exec(ctx, stmt)
}

func (e executor) Delete(ctx context.Context, q query.DeleteQuery) (int64, error) {
	stmt, err := query.CompileDelete(q, e.prefix)
	if err != nil {
		return 0, err
	}
	return e.exec(ctx, stmt)
}

func (e executor) ExecSQL(ctx context.Context, q query.RawQuery) (int64, error) {
	stmt, err := query.CompileRaw(q, e.prefix)
	if err != nil {
		return 0, err
	}
	return e.exec(ctx, stmt)
}

func (e executor) exec(ctx context.Context, stmt query.Statement) (int64, error) {
	traceStatement(stmt)
	result, err := e.ex.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
