package cli

import (
	"fmt"

	"github.com/at-ishikawa/studytrack/internal/events"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/mastery"
)

// Notify prints mastery prompts and unlocked achievements as they are published.
// The returned function stops the notifications.
func (p *Printer) Notify(decisions *events.Bus[mastery.DecisionNeeded], engine *gamification.Engine) (stop func()) {
	var stops []func()
	if decisions != nil {
		stops = append(stops, decisions.Subscribe(p.decisionNeeded))
	}
	if engine != nil {
		stops = append(stops, engine.OnAchievementUnlocked(p.achievementUnlocked))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func (p *Printer) decisionNeeded(event mastery.DecisionNeeded) {
	p.yellow.Fprintf(p.out, "%q was reviewed %d times.", event.Content, event.ReviewCount)
	fmt.Fprintf(p.out, " Decide with: studytrack decide %s mastered|maintenance|repeat|archived\n", event.ItemID)
}

func (p *Printer) achievementUnlocked(event gamification.AchievementUnlocked) {
	p.yellow.Fprintf(p.out, "Achievement unlocked: %s", event.Definition.Name)
	fmt.Fprintf(p.out, " (+%d) %s\n", event.Achievement.PointsAwarded, event.Definition.Description)
}
