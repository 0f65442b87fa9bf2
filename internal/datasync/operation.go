// Package datasync keeps a local-first store consistent with the remote source of truth.
package datasync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity is the table an operation writes to.
type Entity string

const (
	EntityTopic         Entity = "topics"
	EntityItem          Entity = "learning_items"
	EntityReviewSession Entity = "review_sessions"
	EntityStats         Entity = "user_gamification_stats"
	EntityAchievement   Entity = "achievements"
	EntityDailyStats    Entity = "daily_stats"
)

type Kind string

const (
	KindUpsert Kind = "upsert"
	KindCreate Kind = "create"
	KindDelete Kind = "delete"
)

// PendingOperation is a write that has to reach the remote gateway.
// It is removed from the queue once applied.
type PendingOperation struct {
	ID        string          `json:"id" yaml:"id"`
	Seq       int64           `json:"seq" yaml:"seq"`
	UserID    string          `json:"user_id" yaml:"user_id"`
	Entity    Entity          `json:"entity" yaml:"entity"`
	EntityID  string          `json:"entity_id" yaml:"entity_id"`
	Kind      Kind            `json:"kind" yaml:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty" yaml:"-"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Attempts  int             `json:"attempts" yaml:"attempts"`
	LastError string          `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

type entityKey struct {
	userID   string
	entity   Entity
	entityID string
}

func (op PendingOperation) key() entityKey {
	return entityKey{userID: op.UserID, entity: op.Entity, entityID: op.EntityID}
}

// NewOperation encodes value as the payload of a new operation.
// Delete operations carry no payload.
func NewOperation(userID string, entity Entity, entityID string, kind Kind, value any, now time.Time) (PendingOperation, error) {
	op := PendingOperation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Kind:      kind,
		CreatedAt: now,
	}
	if kind == KindDelete {
		return op, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return PendingOperation{}, fmt.Errorf("json.Marshal(%s) > %w", entity, err)
	}
	op.Payload = payload
	return op, nil
}
