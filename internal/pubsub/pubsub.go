// Package pubsub holds the in-process subscriber lists behind the cart, the
// notice board and the client session.
package pubsub

import "sync"

// List calls its subscribers in the order they subscribed. The zero value is
// ready to use.
type List[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe appends fn. The returned func removes it and may be called more
// than once.
func (l *List[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs = append(l.subs, subscriber[T]{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish hands v to every current subscriber, outside the lock, so a
// subscriber may read its source or unsubscribe.
func (l *List[T]) Publish(v T) {
	l.mu.Lock()
	fns := make([]func(T), len(l.subs))
	for i, s := range l.subs {
		fns[i] = s.fn
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
