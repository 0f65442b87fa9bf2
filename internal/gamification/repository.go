package gamification

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studytrack/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/gamification/mock_repository.go -package=mock_gamification

type StatsRepository interface {
	FindStats(ctx context.Context, userID string) (*Stats, error)
	SaveStats(ctx context.Context, stats *Stats) error
}

type AchievementRepository interface {
	FindAchievements(ctx context.Context, userID string) ([]Achievement, error)
	// CreateAchievement records an unlock. Recording the same achievement twice keeps the first row.
	CreateAchievement(ctx context.Context, achievement *Achievement) error
}

type DailyStatsRepository interface {
	FindDailyStats(ctx context.Context, userID, date string) (*DailyStats, error)
	// FindDailyStatsRange returns the days in [from, to], both optional, ordered by date.
	FindDailyStatsRange(ctx context.Context, userID, from, to string) ([]DailyStats, error)
	SaveDailyStats(ctx context.Context, daily *DailyStats) error
}

// Repository is everything the engine reads and writes.
type Repository interface {
	StatsRepository
	AchievementRepository
	DailyStatsRepository
}

type DBStatsRepository struct {
	db *sqlx.DB
}

func NewDBStatsRepository(db *sqlx.DB) *DBStatsRepository {
	return &DBStatsRepository{db: db}
}

// FindStats returns the stats row, or nil if the user has none yet.
func (r *DBStatsRepository) FindStats(ctx context.Context, userID string) (*Stats, error) {
	var stats Stats
	err := r.db.GetContext(ctx, &stats, "SELECT * FROM user_gamification_stats WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Wrap("db.GetContext(user_gamification_stats)", err)
	}
	return &stats, nil
}

func (r *DBStatsRepository) SaveStats(ctx context.Context, stats *Stats) error {
	if _, err := r.db.NamedExecContext(ctx,
		`REPLACE INTO user_gamification_stats (user_id, total_points, current_level, current_streak, longest_streak, last_review_date, updated_at)
		VALUES (:user_id, :total_points, :current_level, :current_streak, :longest_streak, :last_review_date, :updated_at)`,
		stats); err != nil {
		return database.Wrap("db.NamedExecContext(replace user_gamification_stats)", err)
	}
	return nil
}

type DBAchievementRepository struct {
	db *sqlx.DB
}

func NewDBAchievementRepository(db *sqlx.DB) *DBAchievementRepository {
	return &DBAchievementRepository{db: db}
}

func (r *DBAchievementRepository) FindAchievements(ctx context.Context, userID string) ([]Achievement, error) {
	var achievements []Achievement
	if err := r.db.SelectContext(ctx, &achievements,
		"SELECT * FROM achievements WHERE user_id = ? ORDER BY unlocked_at, achievement_id", userID); err != nil {
		return nil, database.Wrap("db.SelectContext(achievements)", err)
	}
	return achievements, nil
}

func (r *DBAchievementRepository) CreateAchievement(ctx context.Context, achievement *Achievement) error {
	if _, err := r.db.NamedExecContext(ctx,
		insertIgnore(r.db)+` INTO achievements (user_id, achievement_id, unlocked_at, points_awarded)
		VALUES (:user_id, :achievement_id, :unlocked_at, :points_awarded)`,
		achievement); err != nil {
		return database.Wrap("db.NamedExecContext(insert achievement)", err)
	}
	return nil
}

// insertIgnore returns the dialect's insert that skips rows violating a unique key.
func insertIgnore(db *sqlx.DB) string {
	if strings.HasPrefix(db.DriverName(), "sqlite") {
		return "INSERT OR IGNORE"
	}
	return "INSERT IGNORE"
}

type DBDailyStatsRepository struct {
	db *sqlx.DB
}

func NewDBDailyStatsRepository(db *sqlx.DB) *DBDailyStatsRepository {
	return &DBDailyStatsRepository{db: db}
}

// FindDailyStats returns the row of date, or nil if nothing happened that day.
func (r *DBDailyStatsRepository) FindDailyStats(ctx context.Context, userID, date string) (*DailyStats, error) {
	var daily DailyStats
	err := r.db.GetContext(ctx, &daily, "SELECT * FROM daily_stats WHERE user_id = ? AND stat_date = ?", userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Wrap("db.GetContext(daily_stats)", err)
	}
	return &daily, nil
}

func (r *DBDailyStatsRepository) FindDailyStatsRange(ctx context.Context, userID, from, to string) ([]DailyStats, error) {
	query := "SELECT * FROM daily_stats WHERE user_id = ?"
	args := []any{userID}
	if from != "" {
		query += " AND stat_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND stat_date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY stat_date"

	var days []DailyStats
	if err := r.db.SelectContext(ctx, &days, query, args...); err != nil {
		return nil, database.Wrap("db.SelectContext(daily_stats)", err)
	}
	return days, nil
}

func (r *DBDailyStatsRepository) SaveDailyStats(ctx context.Context, daily *DailyStats) error {
	if _, err := r.db.NamedExecContext(ctx,
		`REPLACE INTO daily_stats (user_id, stat_date, points_earned, reviews_completed, perfect_timing_count, items_mastered)
		VALUES (:user_id, :stat_date, :points_earned, :reviews_completed, :perfect_timing_count, :items_mastered)`,
		daily); err != nil {
		return database.Wrap("db.NamedExecContext(replace daily_stats)", err)
	}
	return nil
}
