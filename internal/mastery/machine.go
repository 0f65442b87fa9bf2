// Package mastery drives the lifecycle of a learning item:
// active, then mastered, then archived, maintenance or repeat.
package mastery

import (
	"time"

	"github.com/at-ishikawa/studytrack/internal/events"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/scheduling"
)

const DefaultThreshold = 5

// Decision is the user's answer once an item was mastered.
type Decision string

const (
	DecisionMastered    Decision = "mastered"
	DecisionArchived    Decision = "archived"
	DecisionMaintenance Decision = "maintenance"
	DecisionRepeat      Decision = "repeat"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionMastered, DecisionArchived, DecisionMaintenance, DecisionRepeat:
		return d, nil
	}
	return "", learning.NewValidationError("decision", s, "must be one of mastered, archived, maintenance, repeat")
}

// DecisionNeeded is published when an active item reaches the mastery threshold.
type DecisionNeeded struct {
	UserID      string
	ItemID      string
	Content     string
	ReviewCount int
	At          time.Time
}

// Transition describes what a review did to the item status.
type Transition struct {
	From           learning.MasteryStatus
	To             learning.MasteryStatus
	DecisionNeeded bool
}

// Normalize maps a missing or unknown status to active.
func Normalize(status learning.MasteryStatus) learning.MasteryStatus {
	if !status.Valid() {
		return learning.StatusActive
	}
	return status
}

type Machine struct {
	threshold int
	scheduler *scheduling.Scheduler
	bus       *events.Bus[DecisionNeeded]
}

func NewMachine(threshold int, scheduler *scheduling.Scheduler, bus *events.Bus[DecisionNeeded]) *Machine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Machine{
		threshold: threshold,
		scheduler: scheduler,
		bus:       bus,
	}
}

func (m *Machine) Threshold() int {
	return m.threshold
}

// ApplyReview writes a scheduling result into a copy of before and moves its status.
// The decision signal fires only on the review that takes an active item
// from threshold-1 to threshold.
func (m *Machine) ApplyReview(before learning.Item, res scheduling.Result, now time.Time) (learning.Item, Transition) {
	from := Normalize(before.MasteryStatus)
	after := before
	after.MasteryStatus = from
	transition := Transition{From: from, To: from}
	if res.NoFurtherReview {
		return after, transition
	}

	reviewedAt := now
	after.LastReviewedAt = &reviewedAt
	after.NextReviewAt = res.NextReviewAt
	after.IntervalDays = res.IntervalDays
	after.EaseFactor = res.EaseFactor
	after.ReviewCount = res.ReviewCount
	if res.MaintenanceIntervalDays != nil {
		days := *res.MaintenanceIntervalDays
		after.MaintenanceIntervalDays = &days
	}
	after.UpdatedAt = now

	if from == learning.StatusRepeat {
		after.MasteryStatus = learning.StatusActive
	}
	if from == learning.StatusActive && before.ReviewCount == m.threshold-1 && res.ReviewCount == m.threshold {
		after.MasteryStatus = learning.StatusMastered
		transition.DecisionNeeded = true
		m.bus.Publish(DecisionNeeded{
			UserID:      after.UserID,
			ItemID:      after.ID,
			Content:     after.Content,
			ReviewCount: after.ReviewCount,
			At:          now,
		})
	}
	transition.To = after.MasteryStatus
	return after, transition
}

// Decide applies a user decision to a mastered item, or moves an item out of maintenance.
// An item is confirmed as mastered at most once, repeat cycles included.
// maintenanceDays is only used by DecisionMaintenance.
func (m *Machine) Decide(item learning.Item, decision Decision, maintenanceDays *float64, now time.Time) (learning.Item, error) {
	if _, err := ParseDecision(string(decision)); err != nil {
		return item, err
	}
	from := Normalize(item.MasteryStatus)
	switch {
	case from == learning.StatusMastered:
	case from == learning.StatusMaintenance && decision != DecisionMastered:
	default:
		return item, learning.NewValidationError("decision", decision, "not allowed for an item in status "+string(from))
	}
	if decision == DecisionMastered && item.MasteredAt != nil {
		return item, learning.NewValidationError("decision", decision,
			"item was already confirmed as mastered at "+item.MasteredAt.UTC().Format(time.RFC3339))
	}

	after := item
	after.UpdatedAt = now
	switch decision {
	case DecisionMastered:
		masteredAt := now
		after.MasteryStatus = learning.StatusMastered
		after.MasteredAt = &masteredAt
	case DecisionArchived:
		after.MasteryStatus = learning.StatusArchived
		after.NextReviewAt = nil
	case DecisionMaintenance:
		days, err := m.maintenanceDays(item, maintenanceDays)
		if err != nil {
			return item, err
		}
		next := scheduling.ScheduleAfter(now, days)
		after.MasteryStatus = learning.StatusMaintenance
		after.MaintenanceIntervalDays = &days
		after.NextReviewAt = &next
	case DecisionRepeat:
		after.MasteryStatus = learning.StatusRepeat
		after.ReviewCount = 0
		after.IntervalDays = 0
		after.EaseFactor = learning.DefaultEaseFactor
		after.MaintenanceIntervalDays = nil
		after.NextReviewAt = nil
	}
	return after, nil
}

func (m *Machine) maintenanceDays(item learning.Item, requested *float64) (float64, error) {
	var days float64
	switch {
	case requested != nil:
		if *requested <= 0 {
			return 0, learning.NewValidationError("maintenance_interval_days", *requested, "must be positive")
		}
		days = *requested
	case item.MaintenanceIntervalDays != nil && *item.MaintenanceIntervalDays > 0:
		days = *item.MaintenanceIntervalDays
	case item.IntervalDays > 0:
		days = item.IntervalDays
	default:
		days = 1
	}
	return m.scheduler.ClampMaintenanceDays(item.LearningMode, days)
}
