package gamification

import "time"

// UpdateStreak records a review on the local date today.
// The streak grows at most once per day and restarts at 1 after a missed day.
func UpdateStreak(stats *Stats, today string) {
	switch {
	case stats.LastReviewDate == today:
		return
	case stats.LastReviewDate != "" && today < stats.LastReviewDate:
		// an older review replayed after a newer one
		return
	case stats.LastReviewDate != "" && stats.LastReviewDate == previousDate(today):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}
	stats.LongestStreak = max(stats.LongestStreak, stats.CurrentStreak)
	stats.LastReviewDate = today
}

func previousDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}
