package gamification

// Progress is what achievement predicates are evaluated against.
type Progress struct {
	Stats              Stats
	TotalReviews       int
	PerfectTimingCount int
	ItemsMastered      int
}

type AchievementDefinition struct {
	ID          string
	Name        string
	Description string
	Points      int
	Unlocked    func(Progress) bool
}

func reviews(n int) func(Progress) bool {
	return func(p Progress) bool { return p.TotalReviews >= n }
}

func streak(n int) func(Progress) bool {
	return func(p Progress) bool { return p.Stats.CurrentStreak >= n || p.Stats.LongestStreak >= n }
}

func points(n int) func(Progress) bool {
	return func(p Progress) bool { return p.Stats.TotalPoints >= n }
}

func level(n int) func(Progress) bool {
	return func(p Progress) bool { return p.Stats.CurrentLevel >= n }
}

func perfect(n int) func(Progress) bool {
	return func(p Progress) bool { return p.PerfectTimingCount >= n }
}

func mastered(n int) func(Progress) bool {
	return func(p Progress) bool { return p.ItemsMastered >= n }
}

// Catalog lists every achievement in evaluation order.
var Catalog = []AchievementDefinition{
	{ID: "first_review", Name: "First Steps", Description: "Complete your first review", Points: 10, Unlocked: reviews(1)},
	{ID: "streak_3", Name: "Warming Up", Description: "Review 3 days in a row", Points: 25, Unlocked: streak(3)},
	{ID: "streak_7", Name: "Week Warrior", Description: "Review 7 days in a row", Points: 50, Unlocked: streak(7)},
	{ID: "streak_30", Name: "Monthly Master", Description: "Review 30 days in a row", Points: 200, Unlocked: streak(30)},
	{ID: "streak_100", Name: "Unstoppable", Description: "Review 100 days in a row", Points: 1000, Unlocked: streak(100)},
	{ID: "points_1000", Name: "Point Collector", Description: "Earn 1,000 points", Points: 50, Unlocked: points(1000)},
	{ID: "points_5000", Name: "Point Hoarder", Description: "Earn 5,000 points", Points: 150, Unlocked: points(5000)},
	{ID: "points_10000", Name: "Point Legend", Description: "Earn 10,000 points", Points: 300, Unlocked: points(10000)},
	{ID: "level_5", Name: "Rising Star", Description: "Reach level 5", Points: 50, Unlocked: level(5)},
	{ID: "level_10", Name: "Seasoned Learner", Description: "Reach level 10", Points: 150, Unlocked: level(10)},
	{ID: "level_25", Name: "Grand Scholar", Description: "Reach level 25", Points: 500, Unlocked: level(25)},
	{ID: "perfect_10", Name: "Punctual", Description: "Review 10 items with perfect timing", Points: 25, Unlocked: perfect(10)},
	{ID: "perfect_50", Name: "Clockwork", Description: "Review 50 items with perfect timing", Points: 100, Unlocked: perfect(50)},
	{ID: "perfect_100", Name: "Timekeeper", Description: "Review 100 items with perfect timing", Points: 250, Unlocked: perfect(100)},
	{ID: "mastered_1", Name: "First Mastery", Description: "Master your first item", Points: 25, Unlocked: mastered(1)},
	{ID: "mastered_10", Name: "Knowledge Builder", Description: "Master 10 items", Points: 100, Unlocked: mastered(10)},
	{ID: "mastered_50", Name: "Polymath", Description: "Master 50 items", Points: 300, Unlocked: mastered(50)},
}

// FindDefinition looks up a catalog entry by id.
func FindDefinition(id string) (AchievementDefinition, bool) {
	for _, def := range Catalog {
		if def.ID == id {
			return def, true
		}
	}
	return AchievementDefinition{}, false
}

// UnlockAchievements awards every catalog achievement whose predicate holds and that is
// not in unlocked yet, repeating until no more unlock since awarded points can satisfy
// further point and level predicates. It updates progress and unlocked in place and
// returns the new definitions in unlock order.
func UnlockAchievements(progress *Progress, unlocked map[string]bool, curve Curve) []AchievementDefinition {
	var awarded []AchievementDefinition
	for {
		found := false
		for _, def := range Catalog {
			if unlocked[def.ID] || !def.Unlocked(*progress) {
				continue
			}
			unlocked[def.ID] = true
			progress.Stats.TotalPoints += def.Points
			progress.Stats.CurrentLevel = curve.Level(progress.Stats.TotalPoints)
			awarded = append(awarded, def)
			found = true
		}
		if !found {
			return awarded
		}
	}
}
