package gamification

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/at-ishikawa/studytrack/internal/events"
	"github.com/at-ishikawa/studytrack/internal/scheduling"
	"github.com/at-ishikawa/studytrack/internal/userstate"
)

type Config struct {
	BasePoints  int
	ComboWindow time.Duration
	Curve       Curve
	// Location decides which calendar day a review belongs to.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		BasePoints:  DefaultBasePoints,
		ComboWindow: DefaultComboWindow,
		Curve:       DefaultCurve(),
		Location:    time.UTC,
	}
}

// UserState is the cached aggregate of one user.
type UserState struct {
	Stats              Stats           `json:"stats"`
	Unlocked           map[string]bool `json:"unlocked"`
	TotalReviews       int             `json:"total_reviews"`
	PerfectTimingCount int             `json:"perfect_timing_count"`
	ItemsMastered      int             `json:"items_mastered"`
	Today              DailyStats      `json:"today"`
	Combo              Combo           `json:"combo"`
}

func (s UserState) clone() UserState {
	s.Unlocked = maps.Clone(s.Unlocked)
	if s.Unlocked == nil {
		s.Unlocked = make(map[string]bool)
	}
	return s
}

func (s UserState) progress() Progress {
	return Progress{
		Stats:              s.Stats,
		TotalReviews:       s.TotalReviews,
		PerfectTimingCount: s.PerfectTimingCount,
		ItemsMastered:      s.ItemsMastered,
	}
}

// AchievementUnlocked is published for every newly unlocked achievement.
type AchievementUnlocked struct {
	Achievement Achievement
	Definition  AchievementDefinition
}

// StatsUpdated is published after stats were persisted.
type StatsUpdated struct {
	Stats        Stats
	PointsEarned int
	LevelUp      bool
}

// ReviewEvent is a review to be credited to a user.
type ReviewEvent struct {
	UserID     string
	ItemID     string
	Points     Points
	ReviewedAt time.Time
}

type ReviewResult struct {
	Points          Points
	ComboCount      int
	ComboBonus      int
	PointsEarned    int
	LevelUp         bool
	Stats           Stats
	Daily           DailyStats
	NewAchievements []Achievement
}

type Engine struct {
	repository   Repository
	scheduler    *scheduling.Scheduler
	state        userstate.Store[UserState]
	config       Config
	locks        *keyedMutex
	loads        singleflight.Group
	updates      *events.Bus[StatsUpdated]
	achievements *events.Bus[AchievementUnlocked]
}

func NewEngine(repository Repository, scheduler *scheduling.Scheduler, state userstate.Store[UserState], config Config) *Engine {
	if config.BasePoints <= 0 {
		config.BasePoints = DefaultBasePoints
	}
	if config.ComboWindow <= 0 {
		config.ComboWindow = DefaultComboWindow
	}
	if config.Curve.Base <= 0 || config.Curve.Growth < 1 {
		config.Curve = DefaultCurve()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if state == nil {
		state = userstate.NewMemory[UserState](0)
	}
	return &Engine{
		repository:   repository,
		scheduler:    scheduler,
		state:        state,
		config:       config,
		locks:        newKeyedMutex(),
		updates:      events.NewBus[StatsUpdated](),
		achievements: events.NewBus[AchievementUnlocked](),
	}
}

// AddUpdateListener registers fn to be called after every successful stats update.
func (e *Engine) AddUpdateListener(fn func(StatsUpdated)) (unsubscribe func()) {
	return e.updates.Subscribe(fn)
}

// Curve returns the experience curve levels are computed with.
func (e *Engine) Curve() Curve {
	return e.config.Curve
}

func (e *Engine) OnAchievementUnlocked(fn func(AchievementUnlocked)) (unsubscribe func()) {
	return e.achievements.Subscribe(fn)
}

// RecordReview credits a scored review to the user's stats, daily stats, streak, combo and achievements.
func (e *Engine) RecordReview(ctx context.Context, event ReviewEvent) (*ReviewResult, error) {
	var comboCount, comboBonus int
	result, err := e.update(ctx, event.UserID, event.ReviewedAt, func(state *UserState) int {
		state.Combo = state.Combo.Hit(event.Points.IsPerfectTiming, event.ReviewedAt, e.config.ComboWindow)
		comboCount = state.Combo.Count
		comboBonus = ComboBonus(comboCount)

		earned := event.Points.TotalPoints + comboBonus
		state.TotalReviews++
		state.Today.ReviewsCompleted++
		if event.Points.IsPerfectTiming {
			state.PerfectTimingCount++
			state.Today.PerfectTimingCount++
		}
		UpdateStreak(&state.Stats, state.Today.Date)
		return earned
	})
	if err != nil {
		return nil, fmt.Errorf("update(%s) > %w", event.ItemID, err)
	}
	result.Points = event.Points
	result.ComboCount = comboCount
	result.ComboBonus = comboBonus
	return result, nil
}

// RecordMastery counts an item the user decided to keep as mastered.
func (e *Engine) RecordMastery(ctx context.Context, userID string, now time.Time) (*ReviewResult, error) {
	result, err := e.update(ctx, userID, now, func(state *UserState) int {
		state.ItemsMastered++
		state.Today.ItemsMastered++
		return 0
	})
	if err != nil {
		return nil, fmt.Errorf("update() > %w", err)
	}
	return result, nil
}

// CheckAchievements unlocks achievements whose conditions already hold.
// Calling it again with unchanged stats unlocks nothing.
func (e *Engine) CheckAchievements(ctx context.Context, userID string, now time.Time) ([]Achievement, error) {
	result, err := e.update(ctx, userID, now, func(*UserState) int { return 0 })
	if err != nil {
		return nil, fmt.Errorf("update() > %w", err)
	}
	return result.NewAchievements, nil
}

// update runs mutate under the user lock, unlocks achievements and persists the outcome.
// mutate returns the points it earned.
func (e *Engine) update(ctx context.Context, userID string, now time.Time, mutate func(*UserState) int) (*ReviewResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.selectDay(ctx, &state, LocalDate(now, e.config.Location)); err != nil {
		return nil, err
	}

	previousLevel := state.Stats.CurrentLevel
	earned := mutate(&state)
	state.Stats.TotalPoints += earned
	state.Today.PointsEarned += earned
	state.Stats.CurrentLevel = e.config.Curve.Level(state.Stats.TotalPoints)

	progress := state.progress()
	definitions := UnlockAchievements(&progress, state.Unlocked, e.config.Curve)
	var unlocked []Achievement
	for _, def := range definitions {
		unlocked = append(unlocked, Achievement{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    now,
			PointsAwarded: def.Points,
		})
		earned += def.Points
		state.Today.PointsEarned += def.Points
	}
	updatedAt := state.Stats.UpdatedAt
	state.Stats = progress.Stats
	state.Stats.UpdatedAt = now
	if updatedAt.After(now) {
		state.Stats.UpdatedAt = updatedAt
	}

	if err := e.persist(ctx, state, unlocked); err != nil {
		if invalidateErr := e.state.Invalidate(ctx, userID); invalidateErr != nil {
			slog.Default().Warn("failed to invalidate user state", "user_id", userID, "error", invalidateErr)
		}
		return nil, err
	}
	if err := e.state.Set(ctx, userID, state); err != nil {
		slog.Default().Warn("failed to cache user state", "user_id", userID, "error", err)
	}

	levelUp := state.Stats.CurrentLevel > previousLevel
	e.updates.Publish(StatsUpdated{Stats: state.Stats, PointsEarned: earned, LevelUp: levelUp})
	for i, achievement := range unlocked {
		e.achievements.Publish(AchievementUnlocked{Achievement: achievement, Definition: definitions[i]})
	}
	if levelUp {
		slog.Default().Info("level up", "user_id", userID, "level", state.Stats.CurrentLevel)
	}

	return &ReviewResult{
		PointsEarned:    earned,
		LevelUp:         levelUp,
		Stats:           state.Stats,
		Daily:           state.Today,
		NewAchievements: unlocked,
	}, nil
}

// persist writes the unlock rows, then the stats row that commits them, then the day.
// An unlock row newer than the stats row is not committed; see loadFromRepository.
func (e *Engine) persist(ctx context.Context, state UserState, unlocked []Achievement) error {
	for i := range unlocked {
		if err := e.repository.CreateAchievement(ctx, &unlocked[i]); err != nil {
			return fmt.Errorf("repository.CreateAchievement(%s) > %w", unlocked[i].AchievementID, err)
		}
	}
	stats := state.Stats
	if err := e.repository.SaveStats(ctx, &stats); err != nil {
		return fmt.Errorf("repository.SaveStats() > %w", err)
	}
	daily := state.Today
	if err := e.repository.SaveDailyStats(ctx, &daily); err != nil {
		return fmt.Errorf("repository.SaveDailyStats(%s) > %w", daily.Date, err)
	}
	return nil
}

func (e *Engine) selectDay(ctx context.Context, state *UserState, date string) error {
	if state.Today.Date == date {
		return nil
	}
	daily, err := e.repository.FindDailyStats(ctx, state.Stats.UserID, date)
	if err != nil {
		return fmt.Errorf("repository.FindDailyStats(%s) > %w", date, err)
	}
	if daily == nil {
		daily = &DailyStats{UserID: state.Stats.UserID, Date: date}
	}
	state.Today = *daily
	return nil
}

// Stats returns the current stats of the user, initialising defaults for a new user.
func (e *Engine) Stats(ctx context.Context, userID string) (*Stats, error) {
	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &state.Stats, nil
}

// Progress returns the counters achievements are evaluated against.
func (e *Engine) Progress(ctx context.Context, userID string) (*Progress, error) {
	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress := state.progress()
	return &progress, nil
}

func (e *Engine) load(ctx context.Context, userID string) (UserState, error) {
	state, ok, err := e.state.Get(ctx, userID)
	if err != nil {
		slog.Default().Warn("failed to read cached user state", "user_id", userID, "error", err)
	}
	if ok {
		return state.clone(), nil
	}

	v, err, _ := e.loads.Do(userID, func() (any, error) {
		return e.loadFromRepository(ctx, userID)
	})
	if err != nil {
		return UserState{}, err
	}
	return v.(UserState).clone(), nil
}

func (e *Engine) loadFromRepository(ctx context.Context, userID string) (UserState, error) {
	stats, err := e.repository.FindStats(ctx, userID)
	if err != nil {
		return UserState{}, fmt.Errorf("repository.FindStats() > %w", err)
	}
	if stats == nil {
		defaults := NewStats(userID, time.Time{})
		stats = &defaults
	}
	if stats.CurrentLevel < 1 {
		stats.CurrentLevel = e.config.Curve.Level(stats.TotalPoints)
	}

	achievements, err := e.repository.FindAchievements(ctx, userID)
	if err != nil {
		return UserState{}, fmt.Errorf("repository.FindAchievements() > %w", err)
	}
	unlocked := make(map[string]bool, len(achievements))
	for _, a := range achievements {
		// the stats row of that update never landed, so its points are unlocked again
		if a.UnlockedAt.After(stats.UpdatedAt) {
			continue
		}
		unlocked[a.AchievementID] = true
	}

	days, err := e.repository.FindDailyStatsRange(ctx, userID, "", "")
	if err != nil {
		return UserState{}, fmt.Errorf("repository.FindDailyStatsRange() > %w", err)
	}
	state := UserState{Stats: *stats, Unlocked: unlocked}
	for _, day := range days {
		state.TotalReviews += day.ReviewsCompleted
		state.PerfectTimingCount += day.PerfectTimingCount
		state.ItemsMastered += day.ItemsMastered
	}
	return state, nil
}

// Rebuild recomputes the stats of a user from the daily history.
func (e *Engine) Rebuild(ctx context.Context, userID string, now time.Time) (*Stats, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	days, err := e.repository.FindDailyStatsRange(ctx, userID, "", "")
	if err != nil {
		return nil, fmt.Errorf("repository.FindDailyStatsRange() > %w", err)
	}

	stats := RebuildStats(userID, days, e.config.Curve)
	stats.UpdatedAt = now
	if err := e.repository.SaveStats(ctx, &stats); err != nil {
		return nil, fmt.Errorf("repository.SaveStats() > %w", err)
	}
	if err := e.state.Invalidate(ctx, userID); err != nil {
		slog.Default().Warn("failed to invalidate user state", "user_id", userID, "error", err)
	}
	return &stats, nil
}

// RebuildStats derives stats from days ordered by date.
func RebuildStats(userID string, days []DailyStats, curve Curve) Stats {
	stats := NewStats(userID, time.Time{})
	for _, day := range days {
		stats.TotalPoints += day.PointsEarned
		if day.ReviewsCompleted > 0 {
			UpdateStreak(&stats, day.Date)
		}
	}
	stats.CurrentLevel = curve.Level(stats.TotalPoints)
	return stats
}
