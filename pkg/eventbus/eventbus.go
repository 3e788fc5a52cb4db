package eventbus

import "sync"

// Bus is a keyed publish/subscribe bus: subscribers attach to a single key
// (a channel name) and receive only events published under that key.
// Delivery is non-blocking, at-most-once and unordered — a subscriber whose
// buffer is full simply misses the event. Events are expected to be
// self-describing snapshots, so missed deliveries are recovered by the next
// publish.
type Bus[K comparable, T any] struct {
	mu     sync.RWMutex
	subs   map[K][]chan T
	closed bool
}

const subscriberBuffer = 8

// New creates a new Bus.
func New[K comparable, T any]() *Bus[K, T] {
	return &Bus[K, T]{subs: make(map[K][]chan T)}
}

// Publish sends the event to all subscribers of the key. Delivery is non-blocking.
func (b *Bus[K, T]) Publish(key K, e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[key] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber for the key and returns its channel.
func (b *Bus[K, T]) Subscribe(key K) <-chan T {
	ch := make(chan T, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs[key] = append(b.subs[key], ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber from the key and closes its channel.
func (b *Bus[K, T]) Unsubscribe(key K, sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs[key] {
		if ch == sub {
			b.subs[key] = append(b.subs[key][:i], b.subs[key][i+1:]...)
			if len(b.subs[key]) == 0 {
				delete(b.subs, key)
			}
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Subscribers returns the number of subscribers currently attached to the key.
func (b *Bus[K, T]) Subscribers(key K) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[key])
}

// Close closes all subscriber channels and clears the bus.
func (b *Bus[K, T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subs = nil
	b.mu.Unlock()
}
