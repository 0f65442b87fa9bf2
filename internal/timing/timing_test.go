package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBonus(t *testing.T) {
	scheduled := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	window := Window{PerfectHours: 2, BeforeHours: 6, AfterHours: 12}

	tests := []struct {
		name       string
		scheduled  *time.Time
		reviewedAt time.Time
		want       float64
		wantBucket Bucket
	}{
		{
			name:       "never scheduled is neutral",
			reviewedAt: scheduled,
			want:       NeutralBonus,
			wantBucket: BucketLate,
		},
		{
			name:       "exactly on time",
			scheduled:  &scheduled,
			reviewedAt: scheduled,
			want:       PerfectBonus,
			wantBucket: BucketPerfect,
		},
		{
			name:       "edge of perfect window early",
			scheduled:  &scheduled,
			reviewedAt: scheduled.Add(-2 * time.Hour),
			want:       PerfectBonus,
			wantBucket: BucketPerfect,
		},
		{
			name:       "early but inside window",
			scheduled:  &scheduled,
			reviewedAt: scheduled.Add(-5 * time.Hour),
			want:       InWindowBonus,
			wantBucket: BucketOnTime,
		},
		{
			name:       "late but inside window",
			scheduled:  &scheduled,
			reviewedAt: scheduled.Add(12 * time.Hour),
			want:       InWindowBonus,
			wantBucket: BucketOnTime,
		},
		{
			name:       "too early",
			scheduled:  &scheduled,
			reviewedAt: scheduled.Add(-7 * time.Hour),
			want:       LateBonus,
			wantBucket: BucketLate,
		},
		{
			name:       "too late",
			scheduled:  &scheduled,
			reviewedAt: scheduled.Add(13 * time.Hour),
			want:       LateBonus,
			wantBucket: BucketLate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bonus(window, tt.scheduled, tt.reviewedAt)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantBucket, Classify(got))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, BucketPerfect, Classify(2.5))
	assert.Equal(t, BucketPerfect, Classify(PerfectThreshold))
	assert.Equal(t, BucketOnTime, Classify(1.99))
	assert.Equal(t, BucketOnTime, Classify(OnTimeThreshold))
	assert.Equal(t, BucketLate, Classify(1.19))
	assert.Equal(t, BucketLate, Classify(0))
}
