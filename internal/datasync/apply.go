package datasync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// ApplyTo performs op against gw.
func ApplyTo(ctx context.Context, gw store.Gateway, op PendingOperation) error {
	switch op.Entity {
	case EntityTopic:
		if op.Kind == KindDelete {
			return gw.DeleteTopic(ctx, op.UserID, op.EntityID)
		}
		var topic learning.Topic
		if err := decode(op, &topic); err != nil {
			return err
		}
		return gw.SaveTopic(ctx, &topic)
	case EntityItem:
		if op.Kind == KindDelete {
			return gw.DeleteItem(ctx, op.UserID, op.EntityID)
		}
		var item learning.Item
		if err := decode(op, &item); err != nil {
			return err
		}
		return gw.SaveItem(ctx, &item)
	case EntityReviewSession:
		var session learning.ReviewSession
		if err := decode(op, &session); err != nil {
			return err
		}
		return gw.CreateReviewSession(ctx, &session)
	case EntityStats:
		var stats gamification.Stats
		if err := decode(op, &stats); err != nil {
			return err
		}
		return gw.SaveStats(ctx, &stats)
	case EntityAchievement:
		var achievement gamification.Achievement
		if err := decode(op, &achievement); err != nil {
			return err
		}
		return gw.CreateAchievement(ctx, &achievement)
	case EntityDailyStats:
		var daily gamification.DailyStats
		if err := decode(op, &daily); err != nil {
			return err
		}
		return gw.SaveDailyStats(ctx, &daily)
	}
	return fmt.Errorf("unknown entity %q of operation %s", op.Entity, op.ID)
}

func decode(op PendingOperation, v any) error {
	if op.Kind == KindDelete {
		return fmt.Errorf("%s does not support %s operations", op.Entity, op.Kind)
	}
	if err := json.Unmarshal(op.Payload, v); err != nil {
		return fmt.Errorf("json.Unmarshal(%s %s) > %w", op.Entity, op.EntityID, err)
	}
	return nil
}
