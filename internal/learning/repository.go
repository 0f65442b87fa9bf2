package learning

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studytrack/internal/database"
)

// ItemFilter narrows FindItems. Zero values match everything.
type ItemFilter struct {
	UserID    string
	TopicID   string
	Statuses  []MasteryStatus
	DueBefore *time.Time
}

// SessionFilter narrows FindReviewSessions. From is inclusive and To is exclusive.
type SessionFilter struct {
	UserID string
	ItemID string
	From   *time.Time
	To     *time.Time
}

type TopicRepository interface {
	FindTopic(ctx context.Context, userID, topicID string) (*Topic, error)
	FindTopics(ctx context.Context, userID string) ([]Topic, error)
	SaveTopic(ctx context.Context, topic *Topic) error
	DeleteTopic(ctx context.Context, userID, topicID string) error
}

type ItemRepository interface {
	FindItem(ctx context.Context, userID, itemID string) (*Item, error)
	FindItems(ctx context.Context, filter ItemFilter) ([]Item, error)
	SaveItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, userID, itemID string) error
}

type ReviewSessionRepository interface {
	CreateReviewSession(ctx context.Context, session *ReviewSession) error
	FindReviewSessions(ctx context.Context, filter SessionFilter) ([]ReviewSession, error)
}

// DBTopicRepository implements TopicRepository with sqlx.
type DBTopicRepository struct {
	db *sqlx.DB
}

func NewDBTopicRepository(db *sqlx.DB) *DBTopicRepository {
	return &DBTopicRepository{db: db}
}

// FindTopic returns the topic, or nil if it does not exist.
func (r *DBTopicRepository) FindTopic(ctx context.Context, userID, topicID string) (*Topic, error) {
	var topic Topic
	err := r.db.GetContext(ctx, &topic, "SELECT * FROM topics WHERE user_id = ? AND id = ?", userID, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Wrap("db.GetContext(topics)", err)
	}
	return &topic, nil
}

func (r *DBTopicRepository) FindTopics(ctx context.Context, userID string) ([]Topic, error) {
	var topics []Topic
	if err := r.db.SelectContext(ctx, &topics, "SELECT * FROM topics WHERE user_id = ? ORDER BY created_at, id", userID); err != nil {
		return nil, database.Wrap("db.SelectContext(topics)", err)
	}
	return topics, nil
}

// SaveTopic inserts or replaces the topic row.
func (r *DBTopicRepository) SaveTopic(ctx context.Context, topic *Topic) error {
	if _, err := r.db.NamedExecContext(ctx,
		`REPLACE INTO topics (id, user_id, name, description, learning_mode, priority, created_at, updated_at)
		VALUES (:id, :user_id, :name, :description, :learning_mode, :priority, :created_at, :updated_at)`,
		topic); err != nil {
		return database.Wrap("db.NamedExecContext(replace topic)", err)
	}
	return nil
}

func (r *DBTopicRepository) DeleteTopic(ctx context.Context, userID, topicID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM topics WHERE user_id = ? AND id = ?", userID, topicID); err != nil {
		return database.Wrap("db.ExecContext(delete topic)", err)
	}
	return nil
}

// DBItemRepository implements ItemRepository with sqlx.
type DBItemRepository struct {
	db *sqlx.DB
}

func NewDBItemRepository(db *sqlx.DB) *DBItemRepository {
	return &DBItemRepository{db: db}
}

// FindItem returns the item, or nil if it does not exist.
func (r *DBItemRepository) FindItem(ctx context.Context, userID, itemID string) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, "SELECT * FROM learning_items WHERE user_id = ? AND id = ?", userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Wrap("db.GetContext(learning_items)", err)
	}
	return &item, nil
}

func (r *DBItemRepository) FindItems(ctx context.Context, filter ItemFilter) ([]Item, error) {
	query, args, err := buildItemQuery(filter)
	if err != nil {
		return nil, database.Wrap("buildItemQuery", err)
	}

	var items []Item
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, database.Wrap("db.SelectContext(learning_items)", err)
	}
	return items, nil
}

func buildItemQuery(filter ItemFilter) (string, []any, error) {
	var conditions []string
	var args []any
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.TopicID != "" {
		conditions = append(conditions, "topic_id = ?")
		args = append(args, filter.TopicID)
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "(next_review_at IS NULL OR next_review_at <= ?)")
		args = append(args, *filter.DueBefore)
	}

	query := "SELECT * FROM learning_items"
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, "mastery_status IN (?)")
		args = append(args, filter.Statuses)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	if len(filter.Statuses) == 0 {
		return query, args, nil
	}
	return sqlx.In(query, args...)
}

// SaveItem inserts or replaces the item row.
func (r *DBItemRepository) SaveItem(ctx context.Context, item *Item) error {
	if _, err := r.db.NamedExecContext(ctx,
		`REPLACE INTO learning_items (id, user_id, topic_id, content, priority, learning_mode, review_count,
			last_reviewed_at, next_review_at, ease_factor, interval_days, mastery_status, maintenance_interval_days,
			mastered_at, created_at, updated_at)
		VALUES (:id, :user_id, :topic_id, :content, :priority, :learning_mode, :review_count,
			:last_reviewed_at, :next_review_at, :ease_factor, :interval_days, :mastery_status, :maintenance_interval_days,
			:mastered_at, :created_at, :updated_at)`,
		item); err != nil {
		return database.Wrap("db.NamedExecContext(replace learning_item)", err)
	}
	return nil
}

func (r *DBItemRepository) DeleteItem(ctx context.Context, userID, itemID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM learning_items WHERE user_id = ? AND id = ?", userID, itemID); err != nil {
		return database.Wrap("db.ExecContext(delete learning_item)", err)
	}
	return nil
}

// DBReviewSessionRepository implements ReviewSessionRepository with sqlx.
type DBReviewSessionRepository struct {
	db *sqlx.DB
}

func NewDBReviewSessionRepository(db *sqlx.DB) *DBReviewSessionRepository {
	return &DBReviewSessionRepository{db: db}
}

// CreateReviewSession appends a session. Replaying the same session id is a no-op.
func (r *DBReviewSessionRepository) CreateReviewSession(ctx context.Context, session *ReviewSession) error {
	if _, err := r.db.NamedExecContext(ctx,
		`REPLACE INTO review_sessions (id, user_id, item_id, difficulty, reviewed_at, next_review_at, interval_days, timing_bonus)
		VALUES (:id, :user_id, :item_id, :difficulty, :reviewed_at, :next_review_at, :interval_days, :timing_bonus)`,
		session); err != nil {
		return database.Wrap("db.NamedExecContext(insert review_session)", err)
	}
	return nil
}

func (r *DBReviewSessionRepository) FindReviewSessions(ctx context.Context, filter SessionFilter) ([]ReviewSession, error) {
	var conditions []string
	var args []any
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.ItemID != "" {
		conditions = append(conditions, "item_id = ?")
		args = append(args, filter.ItemID)
	}
	if filter.From != nil {
		conditions = append(conditions, "reviewed_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "reviewed_at < ?")
		args = append(args, *filter.To)
	}

	query := "SELECT * FROM review_sessions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY reviewed_at, id"

	var sessions []ReviewSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, database.Wrap("db.SelectContext(review_sessions)", err)
	}
	return sessions, nil
}
