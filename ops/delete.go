package ops

import (
	"context"
	"slices"

	"github.com/zeptools/gw-dataops/query"
	"github.com/zeptools/gw-dataops/stream"
)

const (
	opDeleteObject  = "delete object"
	opDeleteObjects = "delete objects"
	opDeleteByQuery = "delete by query"
)

// DeleteConf holds the optional inputs of a Delete. MapFunc builds the delete
// query from an object and is used when Resolver is nil. Without either, the
// registered type mapping is used.
type DeleteConf[T any] struct {
	Resolver           DeleteResolver[T]
	MapFunc            func(T) query.DeleteQuery
	DontUseTransaction bool
}

func resolveDelete[T any](s Store, conf DeleteConf[T]) DeleteResolver[T] {
	switch {
	case conf.Resolver != nil:
		return conf.Resolver
	case conf.MapFunc != nil:
		return DefaultDeleteResolver[T]{MapToDeleteQuery: conf.MapFunc}
	}
	if tm, ok := lookupTypeMapping[T](s); ok {
		return tm.Delete
	}
	return nil
}

type DeleteObject[T any] struct {
	store    Store
	obj      T
	resolver DeleteResolver[T]
}

func PrepareDeleteObject[T any](s Store, obj T, conf DeleteConf[T]) (*DeleteObject[T], error) {
	if s == nil {
		return nil, configError(opDeleteObject, ErrNoStore)
	}
	if isNil(obj) {
		return nil, configError(opDeleteObject, ErrNoObject)
	}
	return &DeleteObject[T]{store: s, obj: obj, resolver: resolveDelete(s, conf)}, nil
}

func (o *DeleteObject[T]) ExecuteBlocking(ctx context.Context) (DeleteResult, error) {
	if o.resolver == nil {
		return DeleteResult{}, noTypeMapping[T](opDeleteObject)
	}
	r, err := o.resolver.PerformDelete(ctx, o.store, o.obj)
	if err != nil {
		return DeleteResult{}, execError(opDeleteObject, err)
	}
	if c := r.Changes(); !c.Empty() {
		o.store.NotifyAboutChanges(ctx, c)
	}
	return r, nil
}

func (o *DeleteObject[T]) AsSingle() *stream.Single[DeleteResult] {
	return stream.NewSingle(o.ExecuteBlocking)
}

type DeleteObjects[T comparable] struct {
	store    Store
	objs     []T
	resolver DeleteResolver[T]
	noTx     bool
}

func PrepareDeleteObjects[T comparable](s Store, objs []T, conf DeleteConf[T]) (*DeleteObjects[T], error) {
	if s == nil {
		return nil, configError(opDeleteObjects, ErrNoStore)
	}
	if objs == nil || slices.ContainsFunc(objs, func(obj T) bool { return isNil(obj) }) {
		return nil, configError(opDeleteObjects, ErrNoObject)
	}
	return &DeleteObjects[T]{
		store:    s,
		objs:     slices.Clone(objs),
		resolver: resolveDelete(s, conf),
		noTx:     conf.DontUseTransaction,
	}, nil
}

func (o *DeleteObjects[T]) ExecuteBlocking(ctx context.Context) (DeleteResults[T], error) {
	if o.resolver == nil {
		return DeleteResults[T]{}, noTypeMapping[T](opDeleteObjects)
	}
	useTx := !o.noTx && o.store.TransactionsEnabled()
	rs, err := writeEach(ctx, opDeleteObjects, o.store, o.objs, useTx, o.resolver.PerformDelete)
	if err != nil {
		return DeleteResults[T]{}, err
	}
	return DeleteResults[T]{Results: rs}, nil
}

func (o *DeleteObjects[T]) AsSingle() *stream.Single[DeleteResults[T]] {
	return stream.NewSingle(o.ExecuteBlocking)
}

// DeleteByQuery removes every row a DeleteQuery matches.
type DeleteByQuery struct {
	store Store
	q     query.DeleteQuery
}

func PrepareDeleteByQuery(s Store, q query.DeleteQuery) (*DeleteByQuery, error) {
	if s == nil {
		return nil, configError(opDeleteByQuery, ErrNoStore)
	}
	if err := q.Validate(); err != nil {
		return nil, configError(opDeleteByQuery, err)
	}
	q.WhereArgs = slices.Clone(q.WhereArgs)
	return &DeleteByQuery{store: s, q: q}, nil
}

func (o *DeleteByQuery) ExecuteBlocking(ctx context.Context) (DeleteResult, error) {
	n, err := o.store.Delete(ctx, o.q)
	if err != nil {
		return DeleteResult{}, execError(opDeleteByQuery, err)
	}
	r := NewDeleteResult(n, o.q.Table).WithURI(o.q.URI)
	o.store.NotifyAboutChanges(ctx, r.Changes())
	return r, nil
}

func (o *DeleteByQuery) AsSingle() *stream.Single[DeleteResult] {
	return stream.NewSingle(o.ExecuteBlocking)
}
