// Package timing classifies how close a review landed to its scheduled time.
// Gamification scoring and the statistics aggregator share these thresholds.
package timing

import (
	"math"
	"time"
)

// Window is the tolerance around a scheduled review, in hours.
type Window struct {
	PerfectHours float64 `yaml:"perfect_hours" json:"perfect_hours"`
	BeforeHours  float64 `yaml:"before_hours" json:"before_hours"`
	AfterHours   float64 `yaml:"after_hours" json:"after_hours"`
}

// Bucket is the timing category of a review.
type Bucket string

const (
	BucketPerfect Bucket = "perfect"
	BucketOnTime  Bucket = "on_time"
	BucketLate    Bucket = "late"
)

// Buckets lists the categories from best to worst.
var Buckets = []Bucket{BucketPerfect, BucketOnTime, BucketLate}

const (
	PerfectBonus  = 2.0
	InWindowBonus = 1.5
	LateBonus     = 1.0
	// NeutralBonus applies to an item that had never been scheduled.
	NeutralBonus = 1.0

	PerfectThreshold = 2.0
	OnTimeThreshold  = 1.2
)

// Bonus returns the multiplier for a review at reviewedAt of an item scheduled at scheduled.
func Bonus(w Window, scheduled *time.Time, reviewedAt time.Time) float64 {
	if scheduled == nil {
		return NeutralBonus
	}
	delta := reviewedAt.Sub(*scheduled).Hours()
	switch {
	case math.Abs(delta) <= w.PerfectHours:
		return PerfectBonus
	case delta >= -w.BeforeHours && delta <= w.AfterHours:
		return InWindowBonus
	default:
		return LateBonus
	}
}

// Classify maps a stored timing bonus to its bucket.
func Classify(bonus float64) Bucket {
	switch {
	case bonus >= PerfectThreshold:
		return BucketPerfect
	case bonus >= OnTimeThreshold:
		return BucketOnTime
	default:
		return BucketLate
	}
}
