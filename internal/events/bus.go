// Package events provides an in-process typed publish-subscribe bus.
package events

import (
	"fmt"
	"log/slog"
	"sync"
)

// Bus delivers events of type T to its subscribers synchronously, in subscription order.
// A nil *Bus is valid and drops every event.
type Bus[T any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if b == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, l := range b.listeners {
				if l.id == id {
					b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every listener with event. A panicking listener is logged and skipped.
func (b *Bus[T]) Publish(event T) {
	if b == nil {
		return
	}
	b.mu.RLock()
	listeners := make([]listener[T], len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		deliver(l.fn, event)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func deliver[T any](fn func(T), event T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().Error("event listener panicked",
				"event", fmt.Sprintf("%T", event),
				"panic", r,
			)
		}
	}()
	fn(event)
}
