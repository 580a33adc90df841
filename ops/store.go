// Package ops builds and runs prepared Get, Put and Delete operations against a Store.
//
// A Prepare function validates its inputs and resolves a resolver once. The
// returned operation holds no execution state: it can be executed any number of
// times, blocking or through the stream package.
package ops

import (
	"context"
	"reflect"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/query"
)

// Executor runs descriptors. It is implemented by a Store and by its transactions.
type Executor interface {
	Query(ctx context.Context, q query.Query) (sqldb.Rows, error)
	RawQuery(ctx context.Context, q query.RawQuery) (sqldb.Rows, error)
	// Insert returns the generated id, or 0 when the backend cannot report one.
	Insert(ctx context.Context, q query.InsertQuery, v query.Values) (int64, error)
	// Update returns the number of rows updated.
	Update(ctx context.Context, q query.UpdateQuery, v query.Values) (int64, error)
	// Delete returns the number of rows deleted.
	Delete(ctx context.Context, q query.DeleteQuery) (int64, error)
	ExecSQL(ctx context.Context, q query.RawQuery) (int64, error)
}

type Tx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the storage handle operations run against. It is shared and never closed by an operation.
type Store interface {
	Executor

	BeginTx(ctx context.Context) (Tx, error)
	// TransactionsEnabled reports whether bulk writes should run in one transaction.
	// It reflects store configuration, not backend capability.
	TransactionsEnabled() bool

	// NotifyAboutChanges publishes c. Delivery failures are the Store's to report.
	NotifyAboutChanges(ctx context.Context, c changes.Changes)
	ObserveChanges(ctx context.Context, f changes.Filter) (<-chan changes.Changes, error)

	// TypeMapping returns the *TypeMapping[T] registered for t.
	TypeMapping(t reflect.Type) (any, bool)
}
