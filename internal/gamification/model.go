// Package gamification turns reviews into points, streaks, levels and achievements.
package gamification

import "time"

// DateLayout is the layout of local calendar dates stored in stats rows.
const DateLayout = "2006-01-02"

// Stats is the per-user aggregate. It can be rebuilt from DailyStats.
type Stats struct {
	UserID        string `db:"user_id" json:"user_id" yaml:"user_id"`
	TotalPoints   int    `db:"total_points" json:"total_points" yaml:"total_points"`
	CurrentLevel  int    `db:"current_level" json:"current_level" yaml:"current_level"`
	CurrentStreak int    `db:"current_streak" json:"current_streak" yaml:"current_streak"`
	LongestStreak int    `db:"longest_streak" json:"longest_streak" yaml:"longest_streak"`
	// LastReviewDate is a local date in DateLayout, empty when the user never reviewed.
	LastReviewDate string    `db:"last_review_date" json:"last_review_date" yaml:"last_review_date"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

// NewStats returns the defaults of a user without history.
func NewStats(userID string, now time.Time) Stats {
	return Stats{
		UserID:       userID,
		CurrentLevel: 1,
		UpdatedAt:    now,
	}
}

// Achievement is an unlocked achievement. It is never deleted.
type Achievement struct {
	UserID        string    `db:"user_id" json:"user_id" yaml:"user_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id" yaml:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at" json:"unlocked_at" yaml:"unlocked_at"`
	PointsAwarded int       `db:"points_awarded" json:"points_awarded" yaml:"points_awarded"`
}

// DailyStats accumulates the activity of one local calendar day.
type DailyStats struct {
	UserID             string `db:"user_id" json:"user_id" yaml:"user_id"`
	Date               string `db:"stat_date" json:"date" yaml:"date"`
	PointsEarned       int    `db:"points_earned" json:"points_earned" yaml:"points_earned"`
	ReviewsCompleted   int    `db:"reviews_completed" json:"reviews_completed" yaml:"reviews_completed"`
	PerfectTimingCount int    `db:"perfect_timing_count" json:"perfect_timing_count" yaml:"perfect_timing_count"`
	ItemsMastered      int    `db:"items_mastered" json:"items_mastered" yaml:"items_mastered"`
}

// LocalDate formats t as a calendar date in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
