package scheduling

import (
	"math"
	"sort"
	"time"

	"github.com/at-ishikawa/studytrack/internal/learning"
)

var easeDeltas = map[learning.Difficulty]float64{
	learning.DifficultyAgain: -0.2,
	learning.DifficultyHard:  -0.15,
	learning.DifficultyGood:  0,
	learning.DifficultyEasy:  0.13,
}

var progressionMultipliers = map[learning.Difficulty]float64{
	learning.DifficultyHard: 0.8,
	learning.DifficultyGood: 1.0,
	learning.DifficultyEasy: 1.2,
}

// Result is the outcome of scheduling one review.
type Result struct {
	NextReviewAt            *time.Time
	IntervalDays            float64
	EaseFactor              float64
	ReviewCount             int
	MaintenanceIntervalDays *float64
	// NoFurtherReview is set for archived items, which are never scheduled again.
	NoFurtherReview bool
}

type Scheduler struct {
	profiles map[learning.Mode]Profile
}

func NewScheduler(profiles map[learning.Mode]Profile) *Scheduler {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Scheduler{profiles: profiles}
}

// Profile returns the interval tables of mode.
func (s *Scheduler) Profile(mode learning.Mode) (Profile, error) {
	profile, ok := s.profiles[mode]
	if !ok {
		return Profile{}, learning.NewValidationError("learning_mode", mode, "unknown learning mode")
	}
	return profile, nil
}

// CalculateNextReview computes the schedule after reviewing item with difficulty d at now.
// The item itself is not modified.
func (s *Scheduler) CalculateNextReview(item learning.Item, d learning.Difficulty, now time.Time) (Result, error) {
	if !d.Valid() {
		return Result{}, learning.NewValidationError("difficulty", d, "must be one of again, hard, good, easy")
	}
	profile, err := s.Profile(item.LearningMode)
	if err != nil {
		return Result{}, err
	}
	if item.IntervalDays < 0 {
		return Result{}, learning.NewValidationError("interval_days", item.IntervalDays, "must not be negative")
	}
	if item.MaintenanceIntervalDays != nil && *item.MaintenanceIntervalDays < 0 {
		return Result{}, learning.NewValidationError("maintenance_interval_days", *item.MaintenanceIntervalDays, "must not be negative")
	}

	ease := item.EaseFactor
	if ease == 0 {
		ease = learning.DefaultEaseFactor
	}

	status := item.MasteryStatus
	if !status.Valid() {
		status = learning.StatusActive
	}

	switch status {
	case learning.StatusArchived:
		return Result{
			EaseFactor:      ease,
			ReviewCount:     item.ReviewCount,
			NoFurtherReview: true,
		}, nil
	case learning.StatusMaintenance:
		return maintenanceReview(item, profile, ease, now), nil
	case learning.StatusRepeat:
		item.ReviewCount = 0
		item.IntervalDays = 0
		ease = learning.DefaultEaseFactor
	}

	ease = clampEase(ease + easeDeltas[d])

	var intervalDays float64
	switch {
	case item.ReviewCount == 0 || d == learning.DifficultyAgain:
		intervalDays = profile.Initial[d] / 24
	case item.ReviewCount-1 < len(profile.Progression):
		intervalDays = profile.Progression[item.ReviewCount-1] * progressionMultipliers[d] / 24
	default:
		// Past the table the interval keeps growing by the ease factor.
		last := profile.Progression[len(profile.Progression)-1] / 24
		target := math.Max(item.IntervalDays*ease, last)
		intervalDays = target * progressionMultipliers[d]
	}

	next := ScheduleAfter(now, intervalDays)
	return Result{
		NextReviewAt: &next,
		IntervalDays: intervalDays,
		EaseFactor:   ease,
		ReviewCount:  item.ReviewCount + 1,
	}, nil
}

func maintenanceReview(item learning.Item, profile Profile, ease float64, now time.Time) Result {
	base := item.IntervalDays
	if item.MaintenanceIntervalDays != nil {
		base = *item.MaintenanceIntervalDays
	}
	if base == 0 {
		base = profile.Initial[learning.DifficultyGood] / 24
	}
	intervalDays := math.Min(2*base, profile.MaintenanceCapDays)
	next := ScheduleAfter(now, intervalDays)
	return Result{
		NextReviewAt:            &next,
		IntervalDays:            intervalDays,
		EaseFactor:              ease,
		ReviewCount:             item.ReviewCount + 1,
		MaintenanceIntervalDays: &intervalDays,
	}
}

// ClampMaintenanceDays bounds a maintenance interval by the cap of mode.
func (s *Scheduler) ClampMaintenanceDays(mode learning.Mode, days float64) (float64, error) {
	profile, err := s.Profile(mode)
	if err != nil {
		return 0, err
	}
	return math.Min(days, profile.MaintenanceCapDays), nil
}

func clampEase(ease float64) float64 {
	return math.Min(math.Max(ease, learning.MinEaseFactor), learning.MaxEaseFactor)
}

// ScheduleAfter schedules whole calendar days ahead, rounding any fraction up.
func ScheduleAfter(now time.Time, days float64) time.Time {
	return now.AddDate(0, 0, int(math.Ceil(days)))
}

// IsDue reports whether item should be reviewed at now.
func (s *Scheduler) IsDue(item learning.Item, now time.Time) bool {
	if item.MasteryStatus == learning.StatusArchived {
		return false
	}
	return item.NextReviewAt == nil || !item.NextReviewAt.After(now)
}

// DueItems returns the due items ordered by scheduled time, then by priority descending.
// Never-reviewed items come first.
func (s *Scheduler) DueItems(items []learning.Item, now time.Time) []learning.Item {
	var due []learning.Item
	for _, item := range items {
		if s.IsDue(item, now) {
			due = append(due, item)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].NextReviewAt, due[j].NextReviewAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return due[i].Priority > due[j].Priority
	})
	return due
}
