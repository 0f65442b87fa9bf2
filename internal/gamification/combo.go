package gamification

import "time"

const DefaultComboWindow = 5 * time.Minute

var comboTiers = []struct {
	count int
	bonus int
}{
	{count: 20, bonus: 50},
	{count: 10, bonus: 20},
	{count: 5, bonus: 10},
	{count: 3, bonus: 5},
}

// Combo counts consecutive perfectly timed reviews.
type Combo struct {
	Count  int       `json:"count"`
	LastAt time.Time `json:"last_at"`
}

// Hit records a review and returns the updated combo.
// A review that is not perfect, or comes after window of inactivity, breaks the chain.
func (c Combo) Hit(perfect bool, at time.Time, window time.Duration) Combo {
	if !perfect {
		return Combo{LastAt: at}
	}
	if c.Count == 0 || c.LastAt.IsZero() || at.Sub(c.LastAt) > window {
		return Combo{Count: 1, LastAt: at}
	}
	return Combo{Count: c.Count + 1, LastAt: at}
}

// ComboBonus returns the extra points for a combo of count reviews.
func ComboBonus(count int) int {
	for _, tier := range comboTiers {
		if count >= tier.count {
			return tier.bonus
		}
	}
	return 0
}
