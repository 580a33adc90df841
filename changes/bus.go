package changes

import (
	"context"
	"errors"
	"sync"
)

// Bus is the publish/subscribe channel for change events.
type Bus interface {
	// Notify publishes c to every observer whose filter matches it.
	Notify(ctx context.Context, c Changes) error
	// Observe streams matching events until ctx is done, then closes the channel.
	Observe(ctx context.Context, f Filter) (<-chan Changes, error)
}

const defaultBuffer = 16

// LocalBus is an in-process Bus. Delivery to an observer whose buffer is full
// blocks the notifier until the observer reads, goes away, or ctx is done.
// Notify still attempts every matching observer and joins the failures.
type LocalBus struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	filter Filter
	done   <-chan struct{}

	mu     sync.Mutex
	ch     chan Changes
	closed bool
}

// Ensure LocalBus implements Bus
var _ Bus = (*LocalBus)(nil)

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[*subscriber]struct{})}
}

func (b *LocalBus) Notify(ctx context.Context, c Changes) error {
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subs))
	for s := range b.subs {
		if s.filter.Match(c) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range targets {
		if err := s.deliver(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *LocalBus) Observe(ctx context.Context, f Filter) (<-chan Changes, error) {
	s := &subscriber{
		filter: f,
		done:   ctx.Done(),
		ch:     make(chan Changes, defaultBuffer),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
		s.close()
	}()
	return s.ch, nil
}

// Subscribers returns the number of active observers.
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (s *subscriber) deliver(ctx context.Context, c Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- c:
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	close(s.ch)
}
