// Package broadcast provides a latest-value publish/subscribe primitive.
//
// Each subscriber holds at most one pending value: a slow reader never blocks
// a publisher, it simply observes the most recent value when it next reads.
package broadcast

import (
	"context"
	"sync"
)

// Broadcaster fans published values out to subscribers.
// The zero value is not usable; create one with New.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	subs    map[chan T]struct{}
	last    T
	hasLast bool
}

// New creates a Broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs: make(map[chan T]struct{}),
	}
}

// Subscribe returns a channel that yields published values until ctx is done,
// after which the channel is closed.
//
// The first value delivered is the most recently published one or, if nothing
// has been published yet, initial (when given).
func (b *Broadcaster[T]) Subscribe(ctx context.Context, initial ...T) <-chan T {
	ch := make(chan T, 1)

	b.mu.Lock()
	switch {
	case b.hasLast:
		ch <- b.last
	case len(initial) > 0:
		ch <- initial[0]
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Publish delivers v to every subscriber, replacing any value a subscriber
// has not read yet.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = v
	b.hasLast = true

	for ch := range b.subs {
		select {
		case ch <- v:
		default:
			// Drop the stale pending value.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
