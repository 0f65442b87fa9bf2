package datasync

import (
	"context"
	"slices"
	"sync"
)

// Queue stores pending operations in the order they were enqueued.
type Queue interface {
	// Enqueue assigns the next sequence number to op and stores it.
	Enqueue(ctx context.Context, op *PendingOperation) error
	List(ctx context.Context) ([]PendingOperation, error)
	Count(ctx context.Context) (int, error)
	// HasPending reports whether an operation on the same row is still queued.
	HasPending(ctx context.Context, userID string, entity Entity, entityID string) (bool, error)
	Remove(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// MemoryQueue is a Queue that lives as long as the process.
type MemoryQueue struct {
	mu  sync.Mutex
	seq int64
	ops []PendingOperation
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, op *PendingOperation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	op.Seq = q.seq
	q.ops = append(q.ops, *op)
	return nil
}

func (q *MemoryQueue) List(context.Context) ([]PendingOperation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.ops), nil
}

func (q *MemoryQueue) Count(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops), nil
}

func (q *MemoryQueue) HasPending(_ context.Context, userID string, entity Entity, entityID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := entityKey{userID: userID, entity: entity, entityID: entityID}
	return slices.ContainsFunc(q.ops, func(op PendingOperation) bool { return op.key() == key }), nil
}

func (q *MemoryQueue) Remove(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = slices.DeleteFunc(q.ops, func(op PendingOperation) bool { return op.ID == id })
	return nil
}

func (q *MemoryQueue) MarkFailed(_ context.Context, id string, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.ops {
		if q.ops[i].ID == id {
			q.ops[i].Attempts++
			q.ops[i].LastError = reason
		}
	}
	return nil
}
