// Package learning provides the learning item domain models and repository interfaces.
package learning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mode selects the interval profile an item is scheduled with.
type Mode string

const (
	ModeUltracram Mode = "ultracram"
	ModeCram      Mode = "cram"
	ModeSteady    Mode = "steady"
	ModeExtended  Mode = "extended"
)

// Modes lists every learning mode from the most to the least intensive.
var Modes = []Mode{ModeUltracram, ModeCram, ModeSteady, ModeExtended}

func (m Mode) Valid() bool {
	switch m {
	case ModeUltracram, ModeCram, ModeSteady, ModeExtended:
		return true
	}
	return false
}

func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", NewValidationError("learning_mode", s, "must be one of ultracram, cram, steady, extended")
	}
	return m, nil
}

// Difficulty is the self-reported recall quality of a review.
type Difficulty string

const (
	DifficultyAgain Difficulty = "again"
	DifficultyHard  Difficulty = "hard"
	DifficultyGood  Difficulty = "good"
	DifficultyEasy  Difficulty = "easy"
)

var Difficulties = []Difficulty{DifficultyAgain, DifficultyHard, DifficultyGood, DifficultyEasy}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyAgain, DifficultyHard, DifficultyGood, DifficultyEasy:
		return true
	}
	return false
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", NewValidationError("difficulty", s, "must be one of again, hard, good, easy")
	}
	return d, nil
}

// MasteryStatus is the lifecycle state of an item.
type MasteryStatus string

const (
	StatusActive      MasteryStatus = "active"
	StatusMastered    MasteryStatus = "mastered"
	StatusArchived    MasteryStatus = "archived"
	StatusMaintenance MasteryStatus = "maintenance"
	StatusRepeat      MasteryStatus = "repeat"
)

func (s MasteryStatus) Valid() bool {
	switch s {
	case StatusActive, StatusMastered, StatusArchived, StatusMaintenance, StatusRepeat:
		return true
	}
	return false
}

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5

	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// ValidatePriority rejects priorities outside 1..10.
func ValidatePriority(priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return NewValidationError("priority", priority, fmt.Sprintf("must be between %d and %d", MinPriority, MaxPriority))
	}
	return nil
}

// Topic groups learning items and carries their defaults.
type Topic struct {
	ID           string    `db:"id" json:"id" yaml:"id"`
	UserID       string    `db:"user_id" json:"user_id" yaml:"user_id"`
	Name         string    `db:"name" json:"name" yaml:"name"`
	Description  string    `db:"description" json:"description" yaml:"description"`
	LearningMode Mode      `db:"learning_mode" json:"learning_mode" yaml:"learning_mode"`
	Priority     int       `db:"priority" json:"priority" yaml:"priority"`
	CreatedAt    time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

// NewTopic validates the defaults and returns a topic with a fresh id.
func NewTopic(userID, name string, mode Mode, priority int, now time.Time) (*Topic, error) {
	if name == "" {
		return nil, NewValidationError("name", name, "must not be empty")
	}
	if !mode.Valid() {
		return nil, NewValidationError("learning_mode", mode, "unknown learning mode")
	}
	if err := ValidatePriority(priority); err != nil {
		return nil, err
	}
	return &Topic{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		LearningMode: mode,
		Priority:     priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Item is a single unit of knowledge scheduled for review.
// A nil NextReviewAt means the item was never reviewed and is due immediately.
type Item struct {
	ID                      string        `db:"id" json:"id" yaml:"id"`
	UserID                  string        `db:"user_id" json:"user_id" yaml:"user_id"`
	TopicID                 string        `db:"topic_id" json:"topic_id" yaml:"topic_id"`
	Content                 string        `db:"content" json:"content" yaml:"content"`
	Priority                int           `db:"priority" json:"priority" yaml:"priority"`
	LearningMode            Mode          `db:"learning_mode" json:"learning_mode" yaml:"learning_mode"`
	ReviewCount             int           `db:"review_count" json:"review_count" yaml:"review_count"`
	LastReviewedAt          *time.Time    `db:"last_reviewed_at" json:"last_reviewed_at,omitempty" yaml:"last_reviewed_at,omitempty"`
	NextReviewAt            *time.Time    `db:"next_review_at" json:"next_review_at,omitempty" yaml:"next_review_at,omitempty"`
	EaseFactor              float64       `db:"ease_factor" json:"ease_factor" yaml:"ease_factor"`
	IntervalDays            float64       `db:"interval_days" json:"interval_days" yaml:"interval_days"`
	MasteryStatus           MasteryStatus `db:"mastery_status" json:"mastery_status" yaml:"mastery_status"`
	MaintenanceIntervalDays *float64      `db:"maintenance_interval_days" json:"maintenance_interval_days,omitempty" yaml:"maintenance_interval_days,omitempty"`
	// MasteredAt is when the user confirmed the item as mastered.
	MasteredAt *time.Time `db:"mastered_at" json:"mastered_at,omitempty" yaml:"mastered_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

type ItemOption func(*Item)

func WithPriority(priority int) ItemOption {
	return func(item *Item) {
		item.Priority = priority
	}
}

func WithMode(mode Mode) ItemOption {
	return func(item *Item) {
		item.LearningMode = mode
	}
}

// NewItem creates an unreviewed item that inherits the topic's mode and priority.
func NewItem(topic Topic, content string, now time.Time, opts ...ItemOption) (*Item, error) {
	if content == "" {
		return nil, NewValidationError("content", content, "must not be empty")
	}
	item := &Item{
		ID:            uuid.NewString(),
		UserID:        topic.UserID,
		TopicID:       topic.ID,
		Content:       content,
		Priority:      topic.Priority,
		LearningMode:  topic.LearningMode,
		EaseFactor:    DefaultEaseFactor,
		MasteryStatus: StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(item)
	}
	if item.Priority == 0 {
		item.Priority = DefaultPriority
	}
	if !item.LearningMode.Valid() {
		return nil, NewValidationError("learning_mode", item.LearningMode, "unknown learning mode")
	}
	if err := ValidatePriority(item.Priority); err != nil {
		return nil, err
	}
	return item, nil
}

// ReviewSession is the immutable record of one review.
type ReviewSession struct {
	ID           string     `db:"id" json:"id" yaml:"id"`
	UserID       string     `db:"user_id" json:"user_id" yaml:"user_id"`
	ItemID       string     `db:"item_id" json:"item_id" yaml:"item_id"`
	Difficulty   Difficulty `db:"difficulty" json:"difficulty" yaml:"difficulty"`
	ReviewedAt   time.Time  `db:"reviewed_at" json:"reviewed_at" yaml:"reviewed_at"`
	NextReviewAt *time.Time `db:"next_review_at" json:"next_review_at,omitempty" yaml:"next_review_at,omitempty"`
	IntervalDays float64    `db:"interval_days" json:"interval_days" yaml:"interval_days"`
	TimingBonus  float64    `db:"timing_bonus" json:"timing_bonus" yaml:"timing_bonus"`
}

// ValidationError reports input rejected before any state was mutated.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
