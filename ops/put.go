package ops

import (
	"context"
	"slices"

	"github.com/zeptools/gw-dataops/stream"
)

const (
	opPutObject  = "put object"
	opPutObjects = "put objects"
)

// PutConf holds the optional inputs of a Put. By default the registered type
// mapping is used and bulk puts run in a transaction when the store supports one.
type PutConf[T any] struct {
	Resolver           PutResolver[T]
	DontUseTransaction bool
}

func resolvePut[T any](s Store, conf PutConf[T]) PutResolver[T] {
	if conf.Resolver != nil {
		return conf.Resolver
	}
	if tm, ok := lookupTypeMapping[T](s); ok {
		return tm.Put
	}
	return nil
}

type PutObject[T any] struct {
	store    Store
	obj      T
	resolver PutResolver[T]
}

func PreparePutObject[T any](s Store, obj T, conf PutConf[T]) (*PutObject[T], error) {
	if s == nil {
		return nil, configError(opPutObject, ErrNoStore)
	}
	if isNil(obj) {
		return nil, configError(opPutObject, ErrNoObject)
	}
	return &PutObject[T]{store: s, obj: obj, resolver: resolvePut(s, conf)}, nil
}

func (o *PutObject[T]) ExecuteBlocking(ctx context.Context) (PutResult, error) {
	if o.resolver == nil {
		return PutResult{}, noTypeMapping[T](opPutObject)
	}
	r, err := o.resolver.PerformPut(ctx, o.store, o.obj)
	if err != nil {
		return PutResult{}, execError(opPutObject, err)
	}
	if c := r.Changes(); !c.Empty() {
		o.store.NotifyAboutChanges(ctx, c)
	}
	return r, nil
}

func (o *PutObject[T]) AsSingle() *stream.Single[PutResult] { return stream.NewSingle(o.ExecuteBlocking) }

type PutObjects[T comparable] struct {
	store    Store
	objs     []T
	resolver PutResolver[T]
	noTx     bool
}

func PreparePutObjects[T comparable](s Store, objs []T, conf PutConf[T]) (*PutObjects[T], error) {
	if s == nil {
		return nil, configError(opPutObjects, ErrNoStore)
	}
	if objs == nil || slices.ContainsFunc(objs, func(obj T) bool { return isNil(obj) }) {
		return nil, configError(opPutObjects, ErrNoObject)
	}
	return &PutObjects[T]{
		store:    s,
		objs:     slices.Clone(objs),
		resolver: resolvePut(s, conf),
		noTx:     conf.DontUseTransaction,
	}, nil
}

func (o *PutObjects[T]) ExecuteBlocking(ctx context.Context) (PutResults[T], error) {
	if o.resolver == nil {
		return PutResults[T]{}, noTypeMapping[T](opPutObjects)
	}
	useTx := !o.noTx && o.store.TransactionsEnabled()
	rs, err := writeEach(ctx, opPutObjects, o.store, o.objs, useTx, o.resolver.PerformPut)
	if err != nil {
		return PutResults[T]{}, err
	}
	return PutResults[T]{Results: rs}, nil
}

func (o *PutObjects[T]) AsSingle() *stream.Single[PutResults[T]] {
	return stream.NewSingle(o.ExecuteBlocking)
}
