package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definitionIDs(defs []AchievementDefinition) []string {
	var ids []string
	for _, def := range defs {
		ids = append(ids, def.ID)
	}
	return ids
}

func TestCatalog(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Catalog {
		assert.False(t, seen[def.ID], "duplicate %s", def.ID)
		seen[def.ID] = true
		assert.Positive(t, def.Points, def.ID)
		assert.NotNil(t, def.Unlocked, def.ID)
	}
	assert.Len(t, Catalog, 17)

	def, ok := FindDefinition("streak_7")
	require.True(t, ok)
	assert.Equal(t, 50, def.Points)
	_, ok = FindDefinition("streak_8")
	assert.False(t, ok)
}

func TestUnlockAchievements(t *testing.T) {
	curve := DefaultCurve()

	tests := []struct {
		name       string
		progress   Progress
		unlocked   map[string]bool
		wantIDs    []string
		wantPoints int
		wantLevel  int
	}{
		{
			name:       "nothing to unlock",
			progress:   Progress{Stats: Stats{CurrentLevel: 1}},
			unlocked:   map[string]bool{},
			wantPoints: 0,
			wantLevel:  1,
		},
		{
			name:       "awarded points unlock a point achievement",
			progress:   Progress{Stats: Stats{TotalPoints: 990, CurrentLevel: 4}, TotalReviews: 1},
			unlocked:   map[string]bool{},
			wantIDs:    []string{"first_review", "points_1000"},
			wantPoints: 1050,
			wantLevel:  4,
		},
		{
			name:       "awarded points raise the level which unlocks a level achievement",
			progress:   Progress{Stats: Stats{TotalPoints: 1200, CurrentLevel: 4}, TotalReviews: 1},
			unlocked:   map[string]bool{},
			wantIDs:    []string{"first_review", "points_1000", "level_5"},
			wantPoints: 1310,
			wantLevel:  5,
		},
		{
			name:       "already unlocked ids are skipped",
			progress:   Progress{Stats: Stats{TotalPoints: 40, CurrentLevel: 1, CurrentStreak: 3}, TotalReviews: 3},
			unlocked:   map[string]bool{"first_review": true},
			wantIDs:    []string{"streak_3"},
			wantPoints: 65,
			wantLevel:  1,
		},
		{
			name:       "longest streak counts after the current one broke",
			progress:   Progress{Stats: Stats{CurrentLevel: 1, CurrentStreak: 1, LongestStreak: 7}, ItemsMastered: 1},
			unlocked:   map[string]bool{"streak_3": true},
			wantIDs:    []string{"streak_7", "mastered_1"},
			wantPoints: 75,
			wantLevel:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := tt.progress
			got := UnlockAchievements(&progress, tt.unlocked, curve)
			assert.Equal(t, tt.wantIDs, definitionIDs(got))
			assert.Equal(t, tt.wantPoints, progress.Stats.TotalPoints)
			assert.Equal(t, tt.wantLevel, progress.Stats.CurrentLevel)

			again := UnlockAchievements(&progress, tt.unlocked, curve)
			assert.Empty(t, again)
			assert.Equal(t, tt.wantPoints, progress.Stats.TotalPoints)
		})
	}
}
