package datasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/at-ishikawa/studytrack/internal/events"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// Status is the connectivity and backlog of a coordinator.
type Status struct {
	Online            bool       `json:"online" yaml:"online"`
	Syncing           bool       `json:"syncing" yaml:"syncing"`
	PendingOperations int        `json:"pending_operations" yaml:"pending_operations"`
	LastSync          *time.Time `json:"last_sync,omitempty" yaml:"last_sync,omitempty"`
}

// SyncResult tracks counts of one replay of the queue.
type SyncResult struct {
	Synced  int
	Failed  int
	Skipped int
	Errors  []error
}

// Coordinator is where every write of the engine goes.
type Coordinator interface {
	Write(ctx context.Context, op PendingOperation) error
	PendingOperationsCount(ctx context.Context) (int, error)
	SyncAll(ctx context.Context) (*SyncResult, error)
	Subscribe(fn func(Status)) (unsubscribe func())
	Status() Status
}

// QueueCoordinator applies writes to the local store first and forwards them to the remote
// store, queueing them while the remote store is unreachable.
type QueueCoordinator struct {
	local  store.Gateway
	remote store.Gateway
	queue  Queue
	now    func() time.Time

	// order serializes remote applies so operations on one row reach the remote in order.
	order sync.Mutex
	syncs singleflight.Group

	mu     sync.Mutex
	status Status
	bus    *events.Bus[Status]
}

// NewQueueCoordinator returns a coordinator that assumes the remote store is reachable
// until a call fails or SetOnline says otherwise.
func NewQueueCoordinator(local, remote store.Gateway, queue Queue) *QueueCoordinator {
	return &QueueCoordinator{
		local:  local,
		remote: remote,
		queue:  queue,
		now:    time.Now,
		status: Status{Online: true},
		bus:    events.NewBus[Status](),
	}
}

// Refresh reloads the pending operation count, which covers operations queued by an earlier process.
func (c *QueueCoordinator) Refresh(ctx context.Context) error {
	count, err := c.queue.Count(ctx)
	if err != nil {
		return fmt.Errorf("queue.Count() > %w", err)
	}
	c.update(func(s *Status) { s.PendingOperations = count })
	return nil
}

// Write applies op to the local store, then to the remote store or the queue.
func (c *QueueCoordinator) Write(ctx context.Context, op PendingOperation) error {
	if err := ApplyTo(ctx, c.local, op); err != nil {
		return fmt.Errorf("ApplyTo(local %s) > %w", op.Entity, err)
	}

	c.order.Lock()
	defer c.order.Unlock()

	if c.Status().Online {
		pending, err := c.queue.HasPending(ctx, op.UserID, op.Entity, op.EntityID)
		if err != nil {
			return fmt.Errorf("queue.HasPending() > %w", err)
		}
		if !pending {
			err := ApplyTo(ctx, c.remote, op)
			if err == nil {
				return nil
			}
			if !store.IsPersistenceError(err) {
				return fmt.Errorf("ApplyTo(remote %s) > %w", op.Entity, err)
			}
			slog.Default().Warn("remote store unreachable, queueing the operation",
				"entity", op.Entity, "entity_id", op.EntityID, "error", err)
			op.LastError = err.Error()
			c.SetOnline(false)
		}
	}

	if err := c.queue.Enqueue(ctx, &op); err != nil {
		return fmt.Errorf("queue.Enqueue() > %w", err)
	}
	c.refreshPending(ctx)
	return nil
}

func (c *QueueCoordinator) PendingOperationsCount(ctx context.Context) (int, error) {
	count, err := c.queue.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("queue.Count() > %w", err)
	}
	return count, nil
}

// SyncAll replays the queue against the remote store. Concurrent calls share one replay.
func (c *QueueCoordinator) SyncAll(ctx context.Context) (*SyncResult, error) {
	v, err, _ := c.syncs.Do("sync", func() (any, error) {
		return c.syncAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	result := *v.(*SyncResult)
	return &result, nil
}

func (c *QueueCoordinator) syncAll(ctx context.Context) (*SyncResult, error) {
	c.update(func(s *Status) { s.Syncing = true })
	defer c.update(func(s *Status) { s.Syncing = false })

	var result SyncResult
	blocked := make(map[entityKey]bool)
	var lastSeq int64
	unreachable := false
	for {
		ops, err := c.queue.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("queue.List() > %w", err)
		}
		ops = slices.DeleteFunc(ops, func(op PendingOperation) bool { return op.Seq <= lastSeq })
		if len(ops) == 0 {
			break
		}

		for _, op := range ops {
			lastSeq = op.Seq
			if blocked[op.key()] {
				result.Skipped++
				continue
			}
			applied, err := c.replay(ctx, op)
			if !applied {
				if err != nil {
					return nil, err
				}
				continue
			}
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Errorf("%s %s: %w", op.Entity, op.EntityID, err))
				blocked[op.key()] = true
				unreachable = unreachable || store.IsPersistenceError(err)
				continue
			}
			result.Synced++
		}
		// operations enqueued during the replay are picked up by another pass
		if result.Failed > 0 {
			break
		}
	}

	c.refreshPending(ctx)
	switch {
	case unreachable:
		c.SetOnline(false)
	case result.Failed == 0:
		now := c.now()
		c.update(func(s *Status) {
			s.Online = true
			s.LastSync = &now
		})
	}
	slog.Default().Debug("sync finished",
		"synced", result.Synced, "failed", result.Failed, "skipped", result.Skipped)
	return &result, nil
}

// replay sends op to the remote store. applied is false when the queue itself failed,
// in which case the replay has to stop.
func (c *QueueCoordinator) replay(ctx context.Context, op PendingOperation) (applied bool, err error) {
	c.order.Lock()
	defer c.order.Unlock()

	if applyErr := ApplyTo(ctx, c.remote, op); applyErr != nil {
		if err := c.queue.MarkFailed(ctx, op.ID, applyErr.Error()); err != nil {
			return false, fmt.Errorf("queue.MarkFailed(%s) > %w", op.ID, errors.Join(err, applyErr))
		}
		return true, applyErr
	}
	if err := c.queue.Remove(ctx, op.ID); err != nil {
		return false, fmt.Errorf("queue.Remove(%s) > %w", op.ID, err)
	}
	return true, nil
}

// SetOnline records the connectivity reported by a monitor.
// It returns true when the coordinator went from offline to online.
func (c *QueueCoordinator) SetOnline(online bool) bool {
	var wentOnline bool
	c.update(func(s *Status) {
		wentOnline = online && !s.Online
		s.Online = online
	})
	return wentOnline
}

func (c *QueueCoordinator) Subscribe(fn func(Status)) (unsubscribe func()) {
	return c.bus.Subscribe(fn)
}

func (c *QueueCoordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *QueueCoordinator) refreshPending(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		slog.Default().Warn("failed to count pending operations", "error", err)
	}
}

// update changes the status and notifies subscribers when it changed.
func (c *QueueCoordinator) update(fn func(*Status)) {
	c.mu.Lock()
	before := c.status
	fn(&c.status)
	after := c.status
	c.mu.Unlock()

	if before.Online != after.Online || before.Syncing != after.Syncing ||
		before.PendingOperations != after.PendingOperations || before.LastSync != after.LastSync {
		c.bus.Publish(after)
	}
}

// CloudCoordinator writes straight to the source of truth. Nothing is ever pending.
type CloudCoordinator struct {
	gw  store.Gateway
	bus *events.Bus[Status]
}

func NewCloudCoordinator(gw store.Gateway) *CloudCoordinator {
	return &CloudCoordinator{gw: gw, bus: events.NewBus[Status]()}
}

func (c *CloudCoordinator) Write(ctx context.Context, op PendingOperation) error {
	if err := ApplyTo(ctx, c.gw, op); err != nil {
		return fmt.Errorf("ApplyTo(%s) > %w", op.Entity, err)
	}
	return nil
}

func (c *CloudCoordinator) PendingOperationsCount(context.Context) (int, error) {
	return 0, nil
}

func (c *CloudCoordinator) SyncAll(context.Context) (*SyncResult, error) {
	return &SyncResult{}, nil
}

func (c *CloudCoordinator) Subscribe(fn func(Status)) (unsubscribe func()) {
	return c.bus.Subscribe(fn)
}

func (c *CloudCoordinator) Status() Status {
	return Status{Online: true}
}

var (
	_ Coordinator = (*QueueCoordinator)(nil)
	_ Coordinator = (*CloudCoordinator)(nil)
)
