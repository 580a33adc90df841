// Package stream exposes blocking calls as cold asynchronous producers.
//
// Nothing runs until Subscribe. Each subscription owns a goroutine that delivers
// Events on a channel and closes it when the producer terminates or is cancelled.
// A call that has already started is allowed to finish after cancellation, but its
// result is not delivered.
package stream

import (
	"context"
	"sync"
)

// Event is one emission: a value, or the terminal error.
type Event[T any] struct {
	Value T
	Err   error
}

type Subscription[T any] struct {
	events chan Event[T]
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

func newSubscription[T any](cancel context.CancelFunc) *Subscription[T] {
	return &Subscription[T]{
		events: make(chan Event[T], 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Events is closed after the last emission.
func (s *Subscription[T]) Events() <-chan Event[T] { return s.events }

// Done is closed once the producer goroutine has exited.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Cancel stops the subscription. It is safe to call more than once.
func (s *Subscription[T]) Cancel() { s.cancel() }

// emit reports whether the event was delivered to an active subscriber.
func (s *Subscription[T]) emit(ctx context.Context, e Event[T]) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case s.events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Subscription[T]) finish() {
	s.once.Do(func() {
		close(s.events)
		close(s.done)
		s.cancel()
	})
}

// Single runs a blocking call once per subscription and emits exactly one Event.
type Single[T any] struct {
	run func(ctx context.Context) (T, error)
}

func NewSingle[T any](run func(ctx context.Context) (T, error)) *Single[T] {
	return &Single[T]{run: run}
}

func (s *Single[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription[T](cancel)
	go func() {
		defer sub.finish()
		v, err := s.run(context.WithoutCancel(ctx))
		sub.emit(ctx, Event[T]{Value: v, Err: err})
	}()
	return sub
}

// Await subscribes and blocks for the single result. If ctx ends first, its error is returned.
func (s *Single[T]) Await(ctx context.Context) (T, error) {
	sub := s.Subscribe(ctx)
	defer sub.Cancel()
	select {
	case e, ok := <-sub.Events():
		if ok {
			return e.Value, e.Err
		}
	case <-ctx.Done():
	}
	var zero T
	return zero, context.Cause(ctx)
}
