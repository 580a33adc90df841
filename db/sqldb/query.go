package sqldb

import (
	"context"
	"fmt"
	"log"
)

// QueryItems runs rawSQLStmt on ex and scans every row into a new M.
func QueryItems[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](
	ctx context.Context,
	ex Executor,
	rawSQLStmt string,
	args ...any, // variadic
) ([]M, error) {
	rows, err := ex.QueryRows(ctx, rawSQLStmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("[WARN] rows.Close() failed: %v", err)
		}
	}()
	return RowsToItems[M, MP](rows)
}

// RowsToItems drains rows without closing them.
func RowsToItems[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](rows Rows) ([]M, error) {
	items := make([]M, 0)
	for rows.Next() {
		item, err := ScanRowToItem[M, MP](rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during iterating rows: %w", err)
	}
	return items, nil
}
