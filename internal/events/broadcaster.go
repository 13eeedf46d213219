// Package events provides the in-process pub/sub used to announce content
// changes and translation requests to interested components.
package events

import (
	"context"
	"sync"
)

// Broadcaster fans events out to subscribers. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event.
type Broadcaster[T any] struct {
	mu       sync.Mutex
	watchers map[uint64]chan T
	nextID   uint64
	buffer   int
}

// NewBroadcaster returns a broadcaster whose subscriber channels hold up to
// buffer pending events. Values below one are raised to one.
func NewBroadcaster[T any](buffer int) *Broadcaster[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster[T]{watchers: make(map[uint64]chan T), buffer: buffer}
}

// Subscribe delivers events until ctx is cancelled, then closes the channel.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) (<-chan T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		ch := make(chan T)
		close(ch)
		return ch, nil
	}
	ch := make(chan T, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// Publish sends evt to every current subscriber.
func (b *Broadcaster[T]) Publish(evt T) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers)
}
