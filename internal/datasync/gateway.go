package datasync

import (
	"context"
	"time"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// Gateway reads from a store and sends every write through a Coordinator,
// so engines written against store.Gateway are synchronized transparently.
type Gateway struct {
	store.Gateway
	coordinator Coordinator
	now         func() time.Time
}

func NewGateway(reads store.Gateway, coordinator Coordinator) *Gateway {
	return &Gateway{Gateway: reads, coordinator: coordinator, now: time.Now}
}

func (g *Gateway) write(ctx context.Context, userID string, entity Entity, entityID string, kind Kind, value any) error {
	op, err := NewOperation(userID, entity, entityID, kind, value, g.now())
	if err != nil {
		return err
	}
	return g.coordinator.Write(ctx, op)
}

func (g *Gateway) SaveTopic(ctx context.Context, topic *learning.Topic) error {
	return g.write(ctx, topic.UserID, EntityTopic, topic.ID, KindUpsert, topic)
}

func (g *Gateway) DeleteTopic(ctx context.Context, userID, topicID string) error {
	return g.write(ctx, userID, EntityTopic, topicID, KindDelete, nil)
}

func (g *Gateway) SaveItem(ctx context.Context, item *learning.Item) error {
	return g.write(ctx, item.UserID, EntityItem, item.ID, KindUpsert, item)
}

func (g *Gateway) DeleteItem(ctx context.Context, userID, itemID string) error {
	return g.write(ctx, userID, EntityItem, itemID, KindDelete, nil)
}

func (g *Gateway) CreateReviewSession(ctx context.Context, session *learning.ReviewSession) error {
	return g.write(ctx, session.UserID, EntityReviewSession, session.ID, KindCreate, session)
}

func (g *Gateway) SaveStats(ctx context.Context, stats *gamification.Stats) error {
	return g.write(ctx, stats.UserID, EntityStats, stats.UserID, KindUpsert, stats)
}

func (g *Gateway) CreateAchievement(ctx context.Context, achievement *gamification.Achievement) error {
	return g.write(ctx, achievement.UserID, EntityAchievement, achievement.AchievementID, KindCreate, achievement)
}

func (g *Gateway) SaveDailyStats(ctx context.Context, daily *gamification.DailyStats) error {
	return g.write(ctx, daily.UserID, EntityDailyStats, daily.Date, KindUpsert, daily)
}

var _ store.Gateway = (*Gateway)(nil)
