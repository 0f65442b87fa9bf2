package userstate

import (
	"context"
	"log/slog"
)

// Tiered reads through a fast local store backed by a shared one.
// Failures of the shared store are logged and treated as misses.
type Tiered[T any] struct {
	local  Store[T]
	shared Store[T]
}

func NewTiered[T any](local, shared Store[T]) *Tiered[T] {
	return &Tiered[T]{local: local, shared: shared}
}

func (s *Tiered[T]) Get(ctx context.Context, userID string) (T, bool, error) {
	value, ok, err := s.local.Get(ctx, userID)
	if err != nil || ok {
		return value, ok, err
	}

	value, ok, err = s.shared.Get(ctx, userID)
	if err != nil {
		slog.Default().Warn("shared user state unavailable", "user_id", userID, "error", err)
		var zero T
		return zero, false, nil
	}
	if ok {
		if err := s.local.Set(ctx, userID, value); err != nil {
			return value, true, err
		}
	}
	return value, ok, nil
}

func (s *Tiered[T]) Set(ctx context.Context, userID string, value T) error {
	if err := s.local.Set(ctx, userID, value); err != nil {
		return err
	}
	if err := s.shared.Set(ctx, userID, value); err != nil {
		slog.Default().Warn("failed to write shared user state", "user_id", userID, "error", err)
	}
	return nil
}

func (s *Tiered[T]) Invalidate(ctx context.Context, userID string) error {
	if err := s.local.Invalidate(ctx, userID); err != nil {
		return err
	}
	if err := s.shared.Invalidate(ctx, userID); err != nil {
		slog.Default().Warn("failed to invalidate shared user state", "user_id", userID, "error", err)
	}
	return nil
}
