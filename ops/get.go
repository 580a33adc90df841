package ops

import (
	"context"
	"errors"
	"log"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/query"
	"github.com/zeptools/gw-dataops/stream"
)

const (
	opGetObject = "get object"
	opGetList   = "get list"
)

// GetConf holds the optional inputs of a Get. The zero value uses the registered type mapping.
type GetConf[T any] struct {
	Resolver GetResolver[T]
}

type getter[T any] struct {
	op       string
	store    Store
	sel      query.Selection
	resolver GetResolver[T] // nil when T has no mapping
}

func prepareGet[T any](op string, s Store, sel query.Selection, conf GetConf[T]) (getter[T], error) {
	if s == nil {
		return getter[T]{}, configError(op, ErrNoStore)
	}
	if query.IsMissing(sel) {
		return getter[T]{}, configError(op, ErrNoQuery)
	}
	if err := sel.Validate(); err != nil {
		return getter[T]{}, configError(op, err)
	}
	g := getter[T]{op: op, store: s, sel: query.CloneSelection(sel), resolver: conf.Resolver}
	if g.resolver == nil {
		if tm, ok := lookupTypeMapping[T](s); ok {
			g.resolver = tm.Get
		}
	}
	return g, nil
}

func (g getter[T]) check() error {
	if query.IsMissing(g.sel) {
		return configError(g.op, ErrNoQuery)
	}
	if g.resolver == nil {
		return noTypeMapping[T](g.op)
	}
	return nil
}

// read runs the resolver and hands fn the open row-set, which is closed on every path.
func (g getter[T]) read(ctx context.Context, fn func(rows sqldb.Rows) error) error {
	if err := g.check(); err != nil {
		return err
	}
	rows, err := g.resolver.PerformGet(ctx, g.store, g.sel)
	if err != nil {
		return execError(g.op, err)
	}
	if rows == nil {
		return execError(g.op, errors.New("resolver returned no row-set"))
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil {
			log.Printf("[WARN] %s: closing rows: %v", g.op, cErr)
		}
	}()
	if err = fn(rows); err != nil {
		return execError(g.op, err)
	}
	if err = rows.Err(); err != nil {
		return execError(g.op, err)
	}
	return nil
}

func observe[T, R any](g getter[T], run func(ctx context.Context) (R, error)) (*stream.Observable[R], error) {
	if query.IsMissing(g.sel) {
		return nil, configError(g.op, ErrNoQuery)
	}
	filter := changes.Filter{Tables: g.sel.ObservedTables(), URI: g.sel.ObservedURI()}
	if filter.Empty() {
		return nil, configError(g.op, errors.New("selection observes no tables or uri"))
	}
	return stream.NewObservable(
		g.check,
		func(ctx context.Context) (<-chan changes.Changes, error) { return g.store.ObserveChanges(ctx, filter) },
		run,
	), nil
}

// GetObject reads the first row of a selection.
type GetObject[T any] struct {
	getter[T]
}

func PrepareGetObject[T any](s Store, sel query.Selection, conf GetConf[T]) (*GetObject[T], error) {
	g, err := prepareGet(opGetObject, s, sel, conf)
	if err != nil {
		return nil, err
	}
	return &GetObject[T]{getter: g}, nil
}

// ExecuteBlocking returns nil when the selection matches no row.
func (o *GetObject[T]) ExecuteBlocking(ctx context.Context) (*T, error) {
	var out *T
	err := o.read(ctx, func(rows sqldb.Rows) error {
		if !rows.Next() {
			return nil
		}
		v, err := o.resolver.MapFromRows(rows)
		if err != nil {
			return err
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *GetObject[T]) AsSingle() *stream.Single[*T] { return stream.NewSingle(o.ExecuteBlocking) }

// Observe emits the object now and after every change to the observed tables or URI.
func (o *GetObject[T]) Observe() (*stream.Observable[*T], error) {
	return observe(o.getter, o.ExecuteBlocking)
}

// GetList reads every row of a selection in backend order.
type GetList[T any] struct {
	getter[T]
}

func PrepareGetList[T any](s Store, sel query.Selection, conf GetConf[T]) (*GetList[T], error) {
	g, err := prepareGet(opGetList, s, sel, conf)
	if err != nil {
		return nil, err
	}
	return &GetList[T]{getter: g}, nil
}

// ExecuteBlocking returns an empty, non-nil slice when nothing matches.
func (o *GetList[T]) ExecuteBlocking(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	err := o.read(ctx, func(rows sqldb.Rows) error {
		for rows.Next() {
			v, err := o.resolver.MapFromRows(rows)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *GetList[T]) AsSingle() *stream.Single[[]T] { return stream.NewSingle(o.ExecuteBlocking) }

func (o *GetList[T]) Observe() (*stream.Observable[[]T], error) {
	return observe(o.getter, o.ExecuteBlocking)
}
