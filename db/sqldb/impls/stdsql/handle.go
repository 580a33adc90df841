// Package stdsql adapts database/sql to the sqldb contracts.
// Drivers registered with database/sql (mysql, duckdb) share it.
package stdsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zeptools/gw-dataops/db/sqldb"
)

type Handle struct {
	*sql.DB // [Embedded]
}

// Ensure stdsql.Handle implements sqldb.Handle interface
var _ sqldb.Handle = (*Handle)(nil)

func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	result, err := h.DB.ExecContext(ctx, query, args...)
	// NOTE: We can process a DBMS-specific error to produce a better abstracted error
	if err != nil {
		return nil, err
	}
	return &Result{result: result}, nil
}

func (h *Handle) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	rows, err := h.DB.QueryContext(ctx, query, args...)
	// NOTE: We can process a DBMS-specific error to produce a better abstracted error
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

// Listen - param: channel
func (h *Handle) Listen(_ context.Context, channel string) (<-chan sqldb.Notification, error) {
	return nil, fmt.Errorf("listen on %q: %w", channel, sqldb.ErrNotSupported)
}

// BeginTx starts a transaction on the pool.
func (h *Handle) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %w", err)
	}
	return &Tx{tx: tx}, nil
}
