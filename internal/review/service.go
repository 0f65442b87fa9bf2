// Package review ties scheduling, mastery and gamification together for one review.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/mastery"
	"github.com/at-ishikawa/studytrack/internal/scheduling"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// ErrArchived is returned for reviews of archived items. Nothing is written.
var ErrArchived = learning.NewValidationError("mastery_status", learning.StatusArchived, "archived items are not reviewed")

type Request struct {
	UserID     string
	ItemID     string
	Difficulty learning.Difficulty
	// ReviewedAt defaults to the current time.
	ReviewedAt time.Time
}

type Outcome struct {
	Item       learning.Item
	Session    learning.ReviewSession
	Points     gamification.Points
	Transition mastery.Transition
	Result     *gamification.ReviewResult
}

type Decided struct {
	Item learning.Item
	// Result is set when the decision counted the item as mastered.
	Result *gamification.ReviewResult
}

type Service struct {
	gw        store.Gateway
	scheduler *scheduling.Scheduler
	machine   *mastery.Machine
	engine    *gamification.Engine
	now       func() time.Time
}

func NewService(gw store.Gateway, scheduler *scheduling.Scheduler, machine *mastery.Machine, engine *gamification.Engine) *Service {
	return &Service{
		gw:        gw,
		scheduler: scheduler,
		machine:   machine,
		engine:    engine,
		now:       time.Now,
	}
}

// timestamp returns t, or the current time when t is zero, at the precision of the store.
func (s *Service) timestamp(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Truncate(time.Second)
}

func (s *Service) findItem(ctx context.Context, userID, itemID string) (*learning.Item, error) {
	if userID == "" {
		return nil, learning.NewValidationError("user_id", userID, "must not be empty")
	}
	item, err := s.gw.FindItem(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("FindItem(%s) > %w", itemID, err)
	}
	if item == nil {
		return nil, learning.NewValidationError("item_id", itemID, "not found")
	}
	item.MasteryStatus = mastery.Normalize(item.MasteryStatus)
	return item, nil
}

// Review scores, reschedules and records one review of an item.
// Points are computed against the schedule the item had before the review.
// The item and session are written before the points. When recording the points fails,
// the error is returned with the item already rescheduled, and reviewing it again counts
// as a new review.
func (s *Service) Review(ctx context.Context, req Request) (*Outcome, error) {
	if _, err := learning.ParseDifficulty(string(req.Difficulty)); err != nil {
		return nil, err
	}
	now := s.timestamp(req.ReviewedAt)
	item, err := s.findItem(ctx, req.UserID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.MasteryStatus == learning.StatusArchived {
		return nil, ErrArchived
	}

	points, err := s.engine.CalculateReviewPoints(*item, now)
	if err != nil {
		return nil, fmt.Errorf("CalculateReviewPoints() > %w", err)
	}
	res, err := s.scheduler.CalculateNextReview(*item, req.Difficulty, now)
	if err != nil {
		return nil, fmt.Errorf("CalculateNextReview() > %w", err)
	}
	after, transition := s.machine.ApplyReview(*item, res, now)

	session := learning.ReviewSession{
		ID:           uuid.NewString(),
		UserID:       item.UserID,
		ItemID:       item.ID,
		Difficulty:   req.Difficulty,
		ReviewedAt:   now,
		NextReviewAt: after.NextReviewAt,
		IntervalDays: after.IntervalDays,
		TimingBonus:  points.TimingBonus,
	}
	if err := s.gw.SaveItem(ctx, &after); err != nil {
		return nil, fmt.Errorf("SaveItem(%s) > %w", after.ID, err)
	}
	if err := s.gw.CreateReviewSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("CreateReviewSession(%s) > %w", session.ID, err)
	}

	result, err := s.engine.RecordReview(ctx, gamification.ReviewEvent{
		UserID:     item.UserID,
		ItemID:     item.ID,
		Points:     points,
		ReviewedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("RecordReview() > %w", err)
	}
	slog.Default().Debug("reviewed item",
		"item_id", item.ID, "difficulty", req.Difficulty, "interval_days", after.IntervalDays,
		"bucket", points.Bucket, "status", after.MasteryStatus)

	return &Outcome{
		Item:       after,
		Session:    session,
		Points:     points,
		Transition: transition,
		Result:     result,
	}, nil
}

// Decide applies the user's decision about a mastered item.
// maintenanceDays is only used by mastery.DecisionMaintenance.
func (s *Service) Decide(ctx context.Context, userID, itemID string, decision mastery.Decision, maintenanceDays *float64, now time.Time) (*Decided, error) {
	now = s.timestamp(now)
	item, err := s.findItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	after, err := s.machine.Decide(*item, decision, maintenanceDays, now)
	if err != nil {
		return nil, err
	}
	if err := s.gw.SaveItem(ctx, &after); err != nil {
		return nil, fmt.Errorf("SaveItem(%s) > %w", after.ID, err)
	}

	decided := &Decided{Item: after}
	if decision == mastery.DecisionMastered {
		decided.Result, err = s.engine.RecordMastery(ctx, userID, now)
		if err != nil {
			return nil, fmt.Errorf("RecordMastery() > %w", err)
		}
	}
	return decided, nil
}

func (s *Service) CreateTopic(ctx context.Context, userID, name, description string, mode learning.Mode, priority int, now time.Time) (*learning.Topic, error) {
	if userID == "" {
		return nil, learning.NewValidationError("user_id", userID, "must not be empty")
	}
	topic, err := learning.NewTopic(userID, name, mode, priority, s.timestamp(now))
	if err != nil {
		return nil, err
	}
	topic.Description = description
	if err := s.gw.SaveTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("SaveTopic(%s) > %w", topic.ID, err)
	}
	return topic, nil
}

// AddItem creates an item in a topic. Mode and priority default to the topic's.
func (s *Service) AddItem(ctx context.Context, userID, topicID, content string, now time.Time, opts ...learning.ItemOption) (*learning.Item, error) {
	topic, err := s.gw.FindTopic(ctx, userID, topicID)
	if err != nil {
		return nil, fmt.Errorf("FindTopic(%s) > %w", topicID, err)
	}
	if topic == nil {
		return nil, learning.NewValidationError("topic_id", topicID, "not found")
	}
	item, err := learning.NewItem(*topic, content, s.timestamp(now), opts...)
	if err != nil {
		return nil, err
	}
	if err := s.gw.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("SaveItem(%s) > %w", item.ID, err)
	}
	return item, nil
}

// DueItems returns the items to review at now, optionally within one topic, most overdue first.
func (s *Service) DueItems(ctx context.Context, userID, topicID string, now time.Time) ([]learning.Item, error) {
	now = s.timestamp(now)
	items, err := s.gw.FindItems(ctx, learning.ItemFilter{UserID: userID, TopicID: topicID, DueBefore: &now})
	if err != nil {
		return nil, fmt.Errorf("FindItems() > %w", err)
	}
	return s.scheduler.DueItems(items, now), nil
}
