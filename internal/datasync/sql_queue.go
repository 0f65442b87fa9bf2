package datasync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studytrack/internal/database"
)

type operationRow struct {
	ID        string    `db:"id"`
	Seq       int64     `db:"seq"`
	UserID    string    `db:"user_id"`
	Entity    string    `db:"entity"`
	EntityID  string    `db:"entity_id"`
	Kind      string    `db:"kind"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	Attempts  int       `db:"attempts"`
	LastError string    `db:"last_error"`
}

func newOperationRow(op PendingOperation) operationRow {
	return operationRow{
		ID:        op.ID,
		Seq:       op.Seq,
		UserID:    op.UserID,
		Entity:    string(op.Entity),
		EntityID:  op.EntityID,
		Kind:      string(op.Kind),
		Payload:   string(op.Payload),
		CreatedAt: op.CreatedAt,
		Attempts:  op.Attempts,
		LastError: op.LastError,
	}
}

func (r operationRow) operation() PendingOperation {
	op := PendingOperation{
		ID:        r.ID,
		Seq:       r.Seq,
		UserID:    r.UserID,
		Entity:    Entity(r.Entity),
		EntityID:  r.EntityID,
		Kind:      Kind(r.Kind),
		CreatedAt: r.CreatedAt,
		Attempts:  r.Attempts,
		LastError: r.LastError,
	}
	if r.Payload != "" {
		op.Payload = json.RawMessage(r.Payload)
	}
	return op
}

// SQLQueue persists pending operations in the pending_operations table of the local database,
// so they survive restarts.
type SQLQueue struct {
	db *sqlx.DB
}

func NewSQLQueue(db *sqlx.DB) *SQLQueue {
	return &SQLQueue{db: db}
}

func (q *SQLQueue) Enqueue(ctx context.Context, op *PendingOperation) error {
	err := database.RunInTx(ctx, q.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var last int64
		if err := tx.GetContext(ctx, &last, "SELECT COALESCE(MAX(seq), 0) FROM pending_operations"); err != nil {
			return err
		}
		op.Seq = last + 1
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO pending_operations (id, seq, user_id, entity, entity_id, kind, payload, created_at, attempts, last_error)
			VALUES (:id, :seq, :user_id, :entity, :entity_id, :kind, :payload, :created_at, :attempts, :last_error)`,
			newOperationRow(*op))
		return err
	})
	if err != nil {
		return database.Wrap("RunInTx(enqueue pending_operation)", err)
	}
	return nil
}

func (q *SQLQueue) List(ctx context.Context) ([]PendingOperation, error) {
	var rows []operationRow
	if err := q.db.SelectContext(ctx, &rows, "SELECT * FROM pending_operations ORDER BY seq"); err != nil {
		return nil, database.Wrap("db.SelectContext(pending_operations)", err)
	}
	ops := make([]PendingOperation, len(rows))
	for i, row := range rows {
		ops[i] = row.operation()
	}
	return ops, nil
}

func (q *SQLQueue) Count(ctx context.Context) (int, error) {
	var count int
	if err := q.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM pending_operations"); err != nil {
		return 0, database.Wrap("db.GetContext(count pending_operations)", err)
	}
	return count, nil
}

func (q *SQLQueue) HasPending(ctx context.Context, userID string, entity Entity, entityID string) (bool, error) {
	var count int
	if err := q.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM pending_operations WHERE entity = ? AND entity_id = ? AND user_id = ?",
		string(entity), entityID, userID); err != nil {
		return false, database.Wrap("db.GetContext(pending_operations by entity)", err)
	}
	return count > 0, nil
}

func (q *SQLQueue) Remove(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, "DELETE FROM pending_operations WHERE id = ?", id); err != nil {
		return database.Wrap("db.ExecContext(delete pending_operation)", err)
	}
	return nil
}

func (q *SQLQueue) MarkFailed(ctx context.Context, id string, reason string) error {
	if _, err := q.db.ExecContext(ctx,
		"UPDATE pending_operations SET attempts = attempts + 1, last_error = ? WHERE id = ?", reason, id); err != nil {
		return database.Wrap("db.ExecContext(update pending_operation)", err)
	}
	return nil
}

var (
	_ Queue = (*SQLQueue)(nil)
	_ Queue = (*MemoryQueue)(nil)
)
