package ops

import (
	"context"
	"fmt"

	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/query"
)

// GetResolver reads T. Resolvers are stateless and may be shared.
type GetResolver[T any] interface {
	PerformGet(ctx context.Context, ex Executor, sel query.Selection) (sqldb.Rows, error)
	// MapFromRows maps the current row. It must not advance rows.
	MapFromRows(rows sqldb.Rows) (T, error)
}

type PutResolver[T any] interface {
	PerformPut(ctx context.Context, ex Executor, obj T) (PutResult, error)
}

type DeleteResolver[T any] interface {
	PerformDelete(ctx context.Context, ex Executor, obj T) (DeleteResult, error)
}

// PerformSelection dispatches sel to Query or RawQuery.
func PerformSelection(ctx context.Context, ex Executor, sel query.Selection) (sqldb.Rows, error) {
	switch s := sel.(type) {
	case query.Query:
		return ex.Query(ctx, s)
	case *query.Query:
		return ex.Query(ctx, *s)
	case query.RawQuery:
		return ex.RawQuery(ctx, s)
	case *query.RawQuery:
		return ex.RawQuery(ctx, *s)
	}
	return nil, fmt.Errorf("unsupported selection %T", sel)
}

// GetResolverFunc maps rows with a plain function and reads with PerformSelection.
type GetResolverFunc[T any] func(rows sqldb.Rows) (T, error)

func (f GetResolverFunc[T]) PerformGet(ctx context.Context, ex Executor, sel query.Selection) (sqldb.Rows, error) {
	return PerformSelection(ctx, ex, sel)
}

func (f GetResolverFunc[T]) MapFromRows(rows sqldb.Rows) (T, error) { return f(rows) }

// ScanGetResolver scans each row into the fields *M exposes through TargetFields.
type ScanGetResolver[M any, MP sqldb.Scannable[M]] struct{}

func (ScanGetResolver[M, MP]) PerformGet(ctx context.Context, ex Executor, sel query.Selection) (sqldb.Rows, error) {
	return PerformSelection(ctx, ex, sel)
}

func (ScanGetResolver[M, MP]) MapFromRows(rows sqldb.Rows) (M, error) {
	return sqldb.ScanRowToItem[M, MP](rows)
}

// DefaultPutResolver updates the object's row and inserts it when nothing was updated.
type DefaultPutResolver[T any] struct {
	MapToInsertQuery func(T) query.InsertQuery
	MapToUpdateQuery func(T) query.UpdateQuery
	MapToValues      func(T) query.Values
}

func (r DefaultPutResolver[T]) PerformPut(ctx context.Context, ex Executor, obj T) (PutResult, error) {
	if r.MapToInsertQuery == nil || r.MapToUpdateQuery == nil || r.MapToValues == nil {
		return PutResult{}, fmt.Errorf("incomplete put resolver for %T", obj)
	}
	values := r.MapToValues(obj)
	uq := r.MapToUpdateQuery(obj)
	updated, err := ex.Update(ctx, uq, values)
	if err != nil {
		return PutResult{}, err
	}
	if updated > 0 {
		return NewPutResultForUpdate(updated, uq.Table).WithURI(uq.URI), nil
	}
	iq := r.MapToInsertQuery(obj)
	id, err := ex.Insert(ctx, iq, values)
	if err != nil {
		return PutResult{}, err
	}
	return NewPutResultForInsert(id, iq.Table).WithURI(iq.URI), nil
}

type DefaultDeleteResolver[T any] struct {
	MapToDeleteQuery func(T) query.DeleteQuery
}

func (r DefaultDeleteResolver[T]) PerformDelete(ctx context.Context, ex Executor, obj T) (DeleteResult, error) {
	if r.MapToDeleteQuery == nil {
		return DeleteResult{}, fmt.Errorf("incomplete delete resolver for %T", obj)
	}
	dq := r.MapToDeleteQuery(obj)
	n, err := ex.Delete(ctx, dq)
	if err != nil {
		return DeleteResult{}, err
	}
	return NewDeleteResult(n, dq.Table).WithURI(dq.URI), nil
}
