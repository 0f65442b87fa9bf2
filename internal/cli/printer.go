// Package cli renders the results of the learning engine on a terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/studytrack/internal/datasync"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/review"
	"github.com/at-ishikawa/studytrack/internal/statistics"
	"github.com/at-ishikawa/studytrack/internal/timing"
)

const dateTimeLayout = "2006-01-02 15:04"

// Printer writes human readable output. Colours are disabled by color.NoColor.
type Printer struct {
	out    io.Writer
	loc    *time.Location
	bold   *color.Color
	italic *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
}

func NewPrinter(out io.Writer, loc *time.Location) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Printer{
		out:    out,
		loc:    loc,
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		cyan:   color.New(color.FgCyan),
	}
}

func (p *Printer) formatTime(t *time.Time) string {
	if t == nil {
		return "now"
	}
	return t.In(p.loc).Format(dateTimeLayout)
}

func (p *Printer) Topics(topics []learning.Topic) {
	if len(topics) == 0 {
		p.italic.Fprintln(p.out, "No topics yet")
		return
	}
	for _, topic := range topics {
		p.bold.Fprintf(p.out, "%s", topic.Name)
		fmt.Fprintf(p.out, " [%s, priority %d] %s\n", topic.LearningMode, topic.Priority, topic.ID)
		if topic.Description != "" {
			p.italic.Fprintf(p.out, "  %s\n", topic.Description)
		}
	}
}

func (p *Printer) Items(items []learning.Item) {
	if len(items) == 0 {
		p.italic.Fprintln(p.out, "No items")
		return
	}
	for _, item := range items {
		p.bold.Fprintf(p.out, "%s", item.Content)
		fmt.Fprintf(p.out, " %s\n", item.ID)
		fmt.Fprintf(p.out, "  ")
		p.status(item.MasteryStatus)
		fmt.Fprintf(p.out, ", %s, %d reviews, next %s\n",
			item.LearningMode, item.ReviewCount, p.formatTime(item.NextReviewAt))
	}
}

func (p *Printer) status(status learning.MasteryStatus) {
	switch status {
	case learning.StatusMastered:
		p.green.Fprint(p.out, status)
	case learning.StatusMaintenance:
		p.cyan.Fprint(p.out, status)
	case learning.StatusArchived:
		p.italic.Fprint(p.out, status)
	default:
		fmt.Fprint(p.out, status)
	}
}

func (p *Printer) bucket(bucket timing.Bucket) *color.Color {
	switch bucket {
	case timing.BucketPerfect:
		return p.green
	case timing.BucketOnTime:
		return p.yellow
	default:
		return p.red
	}
}

// Outcome prints what a review did to the item and to the user's stats.
func (p *Printer) Outcome(outcome *review.Outcome) {
	item := outcome.Item
	p.bold.Fprintf(p.out, "%s", item.Content)
	fmt.Fprintf(p.out, " reviewed as %s\n", outcome.Session.Difficulty)
	fmt.Fprintf(p.out, "  next review %s (%s days)\n",
		p.formatTime(item.NextReviewAt), formatDays(item.IntervalDays))
	fmt.Fprint(p.out, "  timing ")
	p.bucket(outcome.Points.Bucket).Fprintf(p.out, "%s", outcome.Points.Bucket)
	fmt.Fprintf(p.out, " x%.2f, %d points\n", outcome.Points.TimingBonus, outcome.Points.TotalPoints)
	if outcome.Transition.From != outcome.Transition.To {
		fmt.Fprint(p.out, "  status ")
		p.status(outcome.Transition.From)
		fmt.Fprint(p.out, " -> ")
		p.status(outcome.Transition.To)
		fmt.Fprintln(p.out)
	}
	if outcome.Result != nil {
		p.result(outcome.Result)
	}
}

func (p *Printer) Decided(decided *review.Decided) {
	item := decided.Item
	p.bold.Fprintf(p.out, "%s", item.Content)
	fmt.Fprint(p.out, " is now ")
	p.status(item.MasteryStatus)
	if item.MaintenanceIntervalDays != nil {
		fmt.Fprintf(p.out, " every %s days", formatDays(*item.MaintenanceIntervalDays))
	}
	fmt.Fprintf(p.out, ", next review %s\n", p.formatTime(item.NextReviewAt))
	if decided.Result != nil {
		p.result(decided.Result)
	}
}

func (p *Printer) result(result *gamification.ReviewResult) {
	p.green.Fprintf(p.out, "  +%d points", result.PointsEarned)
	if result.ComboBonus > 0 {
		fmt.Fprintf(p.out, " (combo x%d, +%d)", result.ComboCount, result.ComboBonus)
	}
	fmt.Fprintf(p.out, ", total %d, level %d, streak %d\n",
		result.Stats.TotalPoints, result.Stats.CurrentLevel, result.Stats.CurrentStreak)
	if result.LevelUp {
		p.yellow.Fprintf(p.out, "  Level up! You reached level %d\n", result.Stats.CurrentLevel)
	}
}

// Progress prints the stats with the points left until the next level.
func (p *Printer) Progress(progress *gamification.Progress, curve gamification.Curve) {
	stats := progress.Stats
	p.bold.Fprintf(p.out, "Level %d", stats.CurrentLevel)
	fmt.Fprintf(p.out, " (%d points", stats.TotalPoints)
	next := curve.Threshold(stats.CurrentLevel + 1)
	if next > stats.TotalPoints {
		fmt.Fprintf(p.out, ", %d to level %d", next-stats.TotalPoints, stats.CurrentLevel+1)
	}
	fmt.Fprintln(p.out, ")")
	fmt.Fprintf(p.out, "  streak %d days, longest %d\n", stats.CurrentStreak, stats.LongestStreak)
	fmt.Fprintf(p.out, "  %d reviews, %d perfect timing, %d mastered\n",
		progress.TotalReviews, progress.PerfectTimingCount, progress.ItemsMastered)
}

func (p *Printer) Achievements(achievements []gamification.Achievement) {
	for _, achievement := range achievements {
		name := achievement.AchievementID
		if definition, ok := gamification.FindDefinition(achievement.AchievementID); ok {
			name = definition.Name
		}
		fmt.Fprint(p.out, "  ")
		p.yellow.Fprintf(p.out, "%s", name)
		fmt.Fprintf(p.out, " +%d (%s)\n", achievement.PointsAwarded, achievement.UnlockedAt.In(p.loc).Format(gamification.DateLayout))
	}
}

func (p *Printer) Timing(report *statistics.TimingReport) {
	if report.Totals.Total() == 0 {
		p.italic.Fprintln(p.out, "No reviews in range")
		return
	}
	for _, period := range report.Periods {
		p.bold.Fprintf(p.out, "%s", period.Period)
		fmt.Fprint(p.out, " ")
		p.counts(period.Counts)
	}
	p.bold.Fprint(p.out, "total")
	fmt.Fprint(p.out, " ")
	p.counts(report.Totals)
}

func (p *Printer) counts(c statistics.Counts) {
	p.green.Fprintf(p.out, "perfect %d", c.Perfect)
	fmt.Fprint(p.out, " ")
	p.yellow.Fprintf(p.out, "on time %d", c.OnTime)
	fmt.Fprint(p.out, " ")
	p.red.Fprintf(p.out, "late %d", c.Late)
	fmt.Fprintf(p.out, " (%.0f%% perfect)\n", c.PerfectRate()*100)
}

func (p *Printer) SyncResult(result *datasync.SyncResult) {
	fmt.Fprintf(p.out, "synced %d, skipped %d, ", result.Synced, result.Skipped)
	if result.Failed > 0 {
		p.red.Fprintf(p.out, "failed %d\n", result.Failed)
		for _, err := range result.Errors {
			p.red.Fprintf(p.out, "  %v\n", err)
		}
		return
	}
	fmt.Fprintln(p.out, "failed 0")
}

func (p *Printer) SyncStatus(status datasync.Status) {
	if status.Online {
		p.green.Fprint(p.out, "online")
	} else {
		p.red.Fprint(p.out, "offline")
	}
	fmt.Fprintf(p.out, ", %d pending operations", status.PendingOperations)
	if status.LastSync != nil {
		fmt.Fprintf(p.out, ", last sync %s", p.formatTime(status.LastSync))
	}
	fmt.Fprintln(p.out)
}

func formatDays(days float64) string {
	s := fmt.Sprintf("%.2f", days)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
