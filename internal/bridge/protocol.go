// Package bridge exposes a store.Gateway over HTTP so that a process without database
// access reaches the store through the same method set.
package bridge

import (
	"errors"
	"fmt"

	"github.com/at-ishikawa/studytrack/internal/store"
)

// PathPrefix is followed by the name of the Gateway method, e.g. POST /gateway/FindItem.
const PathPrefix = "/gateway/"

type errorKind string

const (
	kindPersistence    errorKind = "persistence"
	kindInvalidRequest errorKind = "invalid_request"
	kindUnknownMethod  errorKind = "unknown_method"
	kindInternal       errorKind = "internal"
)

type userArgs struct {
	UserID string `json:"user_id"`
}

type entityArgs struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

type dailyArgs struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

type rangeArgs struct {
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type errorBody struct {
	Kind    errorKind `json:"kind"`
	Op      string    `json:"op,omitempty"`
	Message string    `json:"message"`
}

type response[T any] struct {
	Result T          `json:"result"`
	Error  *errorBody `json:"error,omitempty"`
}

func newErrorBody(err error) *errorBody {
	var persistenceErr *store.PersistenceError
	if errors.As(err, &persistenceErr) {
		return &errorBody{Kind: kindPersistence, Op: persistenceErr.Op, Message: persistenceErr.Err.Error()}
	}
	var requestErr *requestError
	if errors.As(err, &requestErr) {
		return &errorBody{Kind: kindInvalidRequest, Message: requestErr.Error()}
	}
	return &errorBody{Kind: kindInternal, Message: err.Error()}
}

// err restores the error of a failed call. Persistence errors keep their type so that
// callers cannot tell a bridged gateway from a direct one.
func (b *errorBody) err(method string) error {
	if b.Kind == kindPersistence {
		return &store.PersistenceError{Op: b.Op, Err: errors.New(b.Message)}
	}
	return fmt.Errorf("bridge %s: %s: %s", method, b.Kind, b.Message)
}

type requestError struct {
	err error
}

func (e *requestError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.err)
}

func (e *requestError) Unwrap() error {
	return e.err
}
