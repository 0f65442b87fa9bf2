package gamification

import (
	"math"
	"time"

	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/timing"
)

const DefaultBasePoints = 10

// Points is the score of a single review, before any combo bonus.
type Points struct {
	BasePoints      int           `json:"base_points"`
	TimingBonus     float64       `json:"timing_bonus"`
	PriorityBonus   float64       `json:"priority_bonus"`
	TotalPoints     int           `json:"total_points"`
	IsPerfectTiming bool          `json:"is_perfect_timing"`
	Bucket          timing.Bucket `json:"bucket"`
}

// PriorityBonus returns the multiplier of an item priority between 1 and 10.
func PriorityBonus(priority int) (float64, error) {
	if err := learning.ValidatePriority(priority); err != nil {
		return 0, err
	}
	switch {
	case priority >= 9:
		return 1.5, nil
	case priority >= 7:
		return 1.35, nil
	case priority >= 5:
		return 1.2, nil
	case priority >= 3:
		return 1.1, nil
	default:
		return 1.0, nil
	}
}

// CalculateReviewPoints scores a review of item at reviewedAt against its current schedule.
// Call it before the item is rescheduled.
func (e *Engine) CalculateReviewPoints(item learning.Item, reviewedAt time.Time) (Points, error) {
	priorityBonus, err := PriorityBonus(item.Priority)
	if err != nil {
		return Points{}, err
	}
	profile, err := e.scheduler.Profile(item.LearningMode)
	if err != nil {
		return Points{}, err
	}

	timingBonus := timing.Bonus(profile.Timing, item.NextReviewAt, reviewedAt)
	bucket := timing.Classify(timingBonus)
	return Points{
		BasePoints:      e.config.BasePoints,
		TimingBonus:     timingBonus,
		PriorityBonus:   priorityBonus,
		TotalPoints:     int(math.Round(float64(e.config.BasePoints) * timingBonus * priorityBonus)),
		IsPerfectTiming: bucket == timing.BucketPerfect,
		Bucket:          bucket,
	}, nil
}
