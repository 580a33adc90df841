package stream

import "context"

// Observable emits the result of a blocking call once on subscription and again
// after triggers from its source, until cancelled, the source closes, or the
// call fails. Triggers received while a re-run is pending collapse into it.
type Observable[T any] struct {
	precheck func() error
	source   func(ctx context.Context) (<-chan struct{}, error)
	run      func(ctx context.Context) (T, error)
}

// NewObservable builds an Observable. precheck runs first on every subscription;
// its error is emitted and the source is never opened. A nil source yields a
// single emission.
func NewObservable[T, E any](
	precheck func() error,
	source func(ctx context.Context) (<-chan E, error),
	run func(ctx context.Context) (T, error),
) *Observable[T] {
	o := &Observable[T]{precheck: precheck, run: run}
	if source != nil {
		o.source = func(ctx context.Context) (<-chan struct{}, error) {
			in, err := source(ctx)
			if err != nil {
				return nil, err
			}
			return triggers(ctx, in), nil
		}
	}
	return o
}

// triggers drains in and folds every event that arrives while a re-run is
// already pending into that one re-run, so a slow subscriber never holds up
// the source.
func triggers[E any](ctx context.Context, in <-chan E) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case _, ok := <-in:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out
}

func (o *Observable[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription[T](cancel)
	go func() {
		defer sub.finish()

		if o.precheck != nil {
			if err := o.precheck(); err != nil {
				sub.emit(ctx, Event[T]{Err: err})
				return
			}
		}

		// Open the source before the first run so no change between the two is missed.
		var trigger <-chan struct{}
		if o.source != nil {
			t, err := o.source(ctx)
			if err != nil {
				sub.emit(ctx, Event[T]{Err: err})
				return
			}
			trigger = t
		}

		if !o.runOnce(ctx, sub) || trigger == nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-trigger:
				if !ok || !o.runOnce(ctx, sub) {
					return
				}
			}
		}
	}()
	return sub
}

// runOnce reports whether the subscription should keep going.
func (o *Observable[T]) runOnce(ctx context.Context, sub *Subscription[T]) bool {
	v, err := o.run(context.WithoutCancel(ctx))
	if !sub.emit(ctx, Event[T]{Value: v, Err: err}) {
		return false
	}
	return err == nil
}
