package sqldb

import "context"

// Executor is the statement surface shared by a Handle and a Tx.
type Executor interface {
	// Exec executes SQL statement like INSERT, UPDATE, DELETE.
	Exec(ctx context.Context, query string, args ...any) (Result, error)

	QueryRows(ctx context.Context, query string, args ...any) (Rows, error) // Eager. Fail upfront on statement execution
}

type Handle interface {
	Executor

	// Listen subscribes to a backend notification channel until ctx is done.
	// Backends without server-side notifications return ErrNotSupported.
	Listen(ctx context.Context, channel string) (<-chan Notification, error)
}
