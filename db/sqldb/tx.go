package sqldb

import "context"

// Tx Transaction
type Tx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
