package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
)

type userKey struct {
	userID string
	id     string
}

// Memory is an in-process Gateway. Fail makes every call return a PersistenceError,
// which lets callers rehearse an unreachable store.
type Memory struct {
	mu           sync.RWMutex
	failure      error
	topics       map[userKey]learning.Topic
	items        map[userKey]learning.Item
	sessions     map[userKey]learning.ReviewSession
	stats        map[string]gamification.Stats
	achievements map[userKey]gamification.Achievement
	daily        map[userKey]gamification.DailyStats
}

func NewMemory() *Memory {
	return &Memory{
		topics:       make(map[userKey]learning.Topic),
		items:        make(map[userKey]learning.Item),
		sessions:     make(map[userKey]learning.ReviewSession),
		stats:        make(map[string]gamification.Stats),
		achievements: make(map[userKey]gamification.Achievement),
		daily:        make(map[userKey]gamification.DailyStats),
	}
}

// Fail sets the error returned by every following call. A nil err restores the store.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *Memory) check(op string) error {
	if m.failure != nil {
		return database.Wrap(op, m.failure)
	}
	return nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check("memory.Ping")
}

func (m *Memory) FindTopic(_ context.Context, userID, topicID string) (*learning.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindTopic"); err != nil {
		return nil, err
	}
	topic, ok := m.topics[userKey{userID, topicID}]
	if !ok {
		return nil, nil
	}
	return &topic, nil
}

func (m *Memory) FindTopics(_ context.Context, userID string) ([]learning.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindTopics"); err != nil {
		return nil, err
	}
	var topics []learning.Topic
	for key, topic := range m.topics {
		if key.userID == userID {
			topics = append(topics, topic)
		}
	}
	slices.SortFunc(topics, func(a, b learning.Topic) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return topics, nil
}

func (m *Memory) SaveTopic(_ context.Context, topic *learning.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.SaveTopic"); err != nil {
		return err
	}
	m.topics[userKey{topic.UserID, topic.ID}] = *topic
	return nil
}

func (m *Memory) DeleteTopic(_ context.Context, userID, topicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.DeleteTopic"); err != nil {
		return err
	}
	delete(m.topics, userKey{userID, topicID})
	return nil
}

func (m *Memory) FindItem(_ context.Context, userID, itemID string) (*learning.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindItem"); err != nil {
		return nil, err
	}
	item, ok := m.items[userKey{userID, itemID}]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *Memory) FindItems(_ context.Context, filter learning.ItemFilter) ([]learning.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindItems"); err != nil {
		return nil, err
	}
	var items []learning.Item
	for _, item := range m.items {
		if filter.UserID != "" && item.UserID != filter.UserID {
			continue
		}
		if filter.TopicID != "" && item.TopicID != filter.TopicID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, item.MasteryStatus) {
			continue
		}
		if filter.DueBefore != nil && item.NextReviewAt != nil && item.NextReviewAt.After(*filter.DueBefore) {
			continue
		}
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b learning.Item) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (m *Memory) SaveItem(_ context.Context, item *learning.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.SaveItem"); err != nil {
		return err
	}
	m.items[userKey{item.UserID, item.ID}] = *item
	return nil
}

func (m *Memory) DeleteItem(_ context.Context, userID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.DeleteItem"); err != nil {
		return err
	}
	delete(m.items, userKey{userID, itemID})
	return nil
}

func (m *Memory) CreateReviewSession(_ context.Context, session *learning.ReviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.CreateReviewSession"); err != nil {
		return err
	}
	m.sessions[userKey{session.UserID, session.ID}] = *session
	return nil
}

func (m *Memory) FindReviewSessions(_ context.Context, filter learning.SessionFilter) ([]learning.ReviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindReviewSessions"); err != nil {
		return nil, err
	}
	var sessions []learning.ReviewSession
	for _, session := range m.sessions {
		if filter.UserID != "" && session.UserID != filter.UserID {
			continue
		}
		if filter.ItemID != "" && session.ItemID != filter.ItemID {
			continue
		}
		if filter.From != nil && session.ReviewedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !session.ReviewedAt.Before(*filter.To) {
			continue
		}
		sessions = append(sessions, session)
	}
	slices.SortFunc(sessions, func(a, b learning.ReviewSession) int {
		if c := a.ReviewedAt.Compare(b.ReviewedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sessions, nil
}

func (m *Memory) FindStats(_ context.Context, userID string) (*gamification.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindStats"); err != nil {
		return nil, err
	}
	stats, ok := m.stats[userID]
	if !ok {
		return nil, nil
	}
	return &stats, nil
}

func (m *Memory) SaveStats(_ context.Context, stats *gamification.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.SaveStats"); err != nil {
		return err
	}
	m.stats[stats.UserID] = *stats
	return nil
}

func (m *Memory) FindAchievements(_ context.Context, userID string) ([]gamification.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindAchievements"); err != nil {
		return nil, err
	}
	var achievements []gamification.Achievement
	for key, achievement := range m.achievements {
		if key.userID == userID {
			achievements = append(achievements, achievement)
		}
	}
	slices.SortFunc(achievements, func(a, b gamification.Achievement) int {
		if c := a.UnlockedAt.Compare(b.UnlockedAt); c != 0 {
			return c
		}
		return strings.Compare(a.AchievementID, b.AchievementID)
	})
	return achievements, nil
}

func (m *Memory) CreateAchievement(_ context.Context, achievement *gamification.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.CreateAchievement"); err != nil {
		return err
	}
	key := userKey{achievement.UserID, achievement.AchievementID}
	if _, ok := m.achievements[key]; !ok {
		m.achievements[key] = *achievement
	}
	return nil
}

func (m *Memory) FindDailyStats(_ context.Context, userID, date string) (*gamification.DailyStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindDailyStats"); err != nil {
		return nil, err
	}
	daily, ok := m.daily[userKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &daily, nil
}

func (m *Memory) FindDailyStatsRange(_ context.Context, userID, from, to string) ([]gamification.DailyStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check("memory.FindDailyStatsRange"); err != nil {
		return nil, err
	}
	var days []gamification.DailyStats
	for key, daily := range m.daily {
		if key.userID != userID {
			continue
		}
		if from != "" && daily.Date < from {
			continue
		}
		if to != "" && daily.Date > to {
			continue
		}
		days = append(days, daily)
	}
	slices.SortFunc(days, func(a, b gamification.DailyStats) int {
		return strings.Compare(a.Date, b.Date)
	})
	return days, nil
}

func (m *Memory) SaveDailyStats(_ context.Context, daily *gamification.DailyStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("memory.SaveDailyStats"); err != nil {
		return err
	}
	m.daily[userKey{daily.UserID, daily.Date}] = *daily
	return nil
}
