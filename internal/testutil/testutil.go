// Package testutil provides shared test helpers for creating config files, databases and learning fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
	"github.com/at-ishikawa/studytrack/schemas"
)

// SetupTestConfig creates a minimal config file whose local database lives under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dataDir := filepath.Join(tmpDir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	configContent := fmt.Sprintf(`user_id: user-1
timezone: UTC
deployment: local
local:
  path: %s
sync:
  probe_attempts: 1
log:
  level: debug
`, filepath.Join(dataDir, "studytrack.db"))

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// NewSQLiteGateway opens a migrated SQLite database under the test's temp dir.
func NewSQLiteGateway(t *testing.T) *store.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "studytrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(context.Background(), db, schemas.Migrations, "migrations")
	require.NoError(t, err)
	return store.NewDB(db)
}

// TopicOption configures optional fields of a topic fixture.
type TopicOption func(*learning.Topic)

func WithTopicMode(mode learning.Mode) TopicOption {
	return func(topic *learning.Topic) {
		topic.LearningMode = mode
	}
}

// CreateTopic saves a steady topic of priority 5 for user-1.
func CreateTopic(t *testing.T, gw learning.TopicRepository, id string, opts ...TopicOption) learning.Topic {
	t.Helper()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	topic := learning.Topic{
		ID:           id,
		UserID:       "user-1",
		Name:         "Topic " + id,
		LearningMode: learning.ModeSteady,
		Priority:     5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(&topic)
	}
	require.NoError(t, gw.SaveTopic(context.Background(), &topic))
	return topic
}

// ItemOption configures optional fields of an item fixture.
type ItemOption func(*learning.Item)

// WithSchedule sets the review that was scheduled and the interval that produced it.
func WithSchedule(next time.Time, intervalDays float64) ItemOption {
	return func(item *learning.Item) {
		item.NextReviewAt = &next
		item.IntervalDays = intervalDays
	}
}

func WithStatus(status learning.MasteryStatus) ItemOption {
	return func(item *learning.Item) {
		item.MasteryStatus = status
	}
}

func WithReviewCount(count int) ItemOption {
	return func(item *learning.Item) {
		item.ReviewCount = count
	}
}

// CreateItem saves an active item of topic that inherits the topic's mode and priority.
func CreateItem(t *testing.T, gw learning.ItemRepository, topic learning.Topic, id string, opts ...ItemOption) learning.Item {
	t.Helper()

	item := learning.Item{
		ID:            id,
		UserID:        topic.UserID,
		TopicID:       topic.ID,
		Content:       "content of " + id,
		Priority:      topic.Priority,
		LearningMode:  topic.LearningMode,
		EaseFactor:    learning.DefaultEaseFactor,
		MasteryStatus: learning.StatusActive,
		CreatedAt:     topic.CreatedAt,
		UpdatedAt:     topic.UpdatedAt,
	}
	for _, opt := range opts {
		opt(&item)
	}
	require.NoError(t, gw.SaveItem(context.Background(), &item))
	return item
}
