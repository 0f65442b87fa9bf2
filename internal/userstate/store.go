// Package userstate keeps short-lived per-user state with explicit invalidation.
package userstate

import (
	"context"
	"sync"
	"time"
)

// Store holds one value of type T per user.
type Store[T any] interface {
	Get(ctx context.Context, userID string) (T, bool, error)
	Set(ctx context.Context, userID string, value T) error
	Invalidate(ctx context.Context, userID string) error
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Memory is an in-process Store whose entries expire after a TTL.
// A zero TTL keeps entries until they are invalidated.
type Memory[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[T]
}

func NewMemory[T any](ttl time.Duration) *Memory[T] {
	return &Memory[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
}

func (m *Memory[T]) Get(_ context.Context, userID string) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		var zero T
		return zero, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, userID)
		var zero T
		return zero, false, nil
	}
	return e.value, true, nil
}

func (m *Memory[T]) Set(_ context.Context, userID string, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry[T]{value: value}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[userID] = e
	return nil
}

func (m *Memory[T]) Invalidate(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}
