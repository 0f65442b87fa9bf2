package datasync

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/schemas"
)

func newSQLQueue(t *testing.T) *SQLQueue {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db, schemas.Migrations, "migrations")
	require.NoError(t, err)
	return NewSQLQueue(db)
}

func TestQueues(t *testing.T) {
	queues := map[string]func(t *testing.T) Queue{
		"memory": func(*testing.T) Queue { return NewMemoryQueue() },
		"sqlite": func(t *testing.T) Queue { return newSQLQueue(t) },
	}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for name, newQueue := range queues {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			queue := newQueue(t)

			first, err := NewOperation("user-1", EntityItem, "item-1", KindUpsert, map[string]string{"content": "mitosis"}, now)
			require.NoError(t, err)
			second, err := NewOperation("user-1", EntityReviewSession, "session-1", KindCreate, map[string]string{"id": "session-1"}, now)
			require.NoError(t, err)
			third, err := NewOperation("user-1", EntityItem, "item-1", KindDelete, nil, now)
			require.NoError(t, err)

			for _, op := range []*PendingOperation{&first, &second, &third} {
				require.NoError(t, queue.Enqueue(ctx, op))
			}
			assert.Equal(t, []int64{1, 2, 3}, []int64{first.Seq, second.Seq, third.Seq})

			count, err := queue.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, count)

			pending, err := queue.HasPending(ctx, "user-1", EntityItem, "item-1")
			require.NoError(t, err)
			assert.True(t, pending)
			pending, err = queue.HasPending(ctx, "user-2", EntityItem, "item-1")
			require.NoError(t, err)
			assert.False(t, pending)

			require.NoError(t, queue.MarkFailed(ctx, first.ID, "connection refused"))
			require.NoError(t, queue.Remove(ctx, second.ID))

			ops, err := queue.List(ctx)
			require.NoError(t, err)
			require.Len(t, ops, 2)
			assert.Equal(t, first.ID, ops[0].ID)
			assert.Equal(t, 1, ops[0].Attempts)
			assert.Equal(t, "connection refused", ops[0].LastError)
			assert.JSONEq(t, `{"content":"mitosis"}`, string(ops[0].Payload))
			assert.True(t, now.Equal(ops[0].CreatedAt))
			assert.Equal(t, KindDelete, ops[1].Kind)
			assert.Empty(t, ops[1].Payload)

			fourth, err := NewOperation("user-1", EntityStats, "user-1", KindUpsert, json.RawMessage(`{}`), now)
			require.NoError(t, err)
			require.NoError(t, queue.Enqueue(ctx, &fourth))
			assert.Equal(t, int64(4), fourth.Seq)
		})
	}
}
