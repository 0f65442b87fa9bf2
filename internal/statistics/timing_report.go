// Package statistics aggregates review sessions into timing reports.
package statistics

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
	"github.com/at-ishikawa/studytrack/internal/timing"
)

// Period is the length of a row of a timing report.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", learning.NewValidationError("period", s, "must be one of day, week, month")
}

// Strategy names how a report was computed.
type Strategy string

const (
	StrategyQuery    Strategy = "query"
	StrategySessions Strategy = "sessions"
)

// Filter selects the sessions of a report. From is inclusive and To is exclusive.
type Filter struct {
	UserID  string
	TopicID string
	ItemID  string
	From    *time.Time
	To      *time.Time
	Period  Period
}

// Counts is the number of sessions per timing bucket.
type Counts struct {
	Perfect int `json:"perfect" yaml:"perfect"`
	OnTime  int `json:"on_time" yaml:"on_time"`
	Late    int `json:"late" yaml:"late"`
}

func (c *Counts) add(bucket timing.Bucket, sessions int) {
	switch bucket {
	case timing.BucketPerfect:
		c.Perfect += sessions
	case timing.BucketOnTime:
		c.OnTime += sessions
	default:
		c.Late += sessions
	}
}

func (c Counts) Total() int {
	return c.Perfect + c.OnTime + c.Late
}

// PerfectRate is the share of perfect reviews, 0 without reviews.
func (c Counts) PerfectRate() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Perfect) / float64(c.Total())
}

type PeriodCounts struct {
	// Period is the first day of the period, or the month for monthly reports.
	Period string `json:"period" yaml:"period"`
	Counts `yaml:",inline"`
}

type ItemCounts struct {
	ItemID string `json:"item_id" yaml:"item_id"`
	Counts `yaml:",inline"`
}

// TimingReport holds per-period and per-item bucket counts.
// Periods are sorted newest first and items by id.
type TimingReport struct {
	Periods  []PeriodCounts `json:"periods" yaml:"periods"`
	Items    []ItemCounts   `json:"items" yaml:"items"`
	Totals   Counts         `json:"totals" yaml:"totals"`
	Strategy Strategy       `json:"strategy" yaml:"strategy"`
}

// Aggregator counts review sessions per timing bucket.
// Gateways that implement store.TimingAggregator aggregate in the database,
// any other gateway has its sessions classified here.
type Aggregator struct {
	gw store.Gateway
}

func NewAggregator(gw store.Gateway) *Aggregator {
	return &Aggregator{gw: gw}
}

func (a *Aggregator) Aggregate(ctx context.Context, filter Filter) (*TimingReport, error) {
	if filter.UserID == "" {
		return nil, learning.NewValidationError("user_id", filter.UserID, "must not be empty")
	}
	if filter.Period == "" {
		filter.Period = PeriodDay
	}
	if _, err := ParsePeriod(string(filter.Period)); err != nil {
		return nil, err
	}

	var counts []store.TimingCount
	strategy := StrategySessions
	if aggregator, ok := a.gw.(store.TimingAggregator); ok {
		strategy = StrategyQuery
		var err error
		counts, err = aggregator.AggregateTiming(ctx, store.TimingQuery{
			UserID:  filter.UserID,
			TopicID: filter.TopicID,
			ItemID:  filter.ItemID,
			From:    filter.From,
			To:      filter.To,
		})
		if err != nil {
			return nil, fmt.Errorf("AggregateTiming() > %w", err)
		}
	} else {
		var err error
		counts, err = a.classifySessions(ctx, filter)
		if err != nil {
			return nil, err
		}
	}
	slog.Default().Debug("aggregated review timing", "user_id", filter.UserID, "strategy", strategy, "rows", len(counts))

	report, err := buildReport(counts, filter.Period)
	if err != nil {
		return nil, err
	}
	report.Strategy = strategy
	return report, nil
}

// classifySessions produces the rows AggregateTiming would return from the sessions of the gateway.
func (a *Aggregator) classifySessions(ctx context.Context, filter Filter) ([]store.TimingCount, error) {
	sessions, err := a.gw.FindReviewSessions(ctx, learning.SessionFilter{
		UserID: filter.UserID,
		ItemID: filter.ItemID,
		From:   filter.From,
		To:     filter.To,
	})
	if err != nil {
		return nil, fmt.Errorf("FindReviewSessions() > %w", err)
	}

	var inTopic map[string]bool
	if filter.TopicID != "" {
		items, err := a.gw.FindItems(ctx, learning.ItemFilter{UserID: filter.UserID, TopicID: filter.TopicID})
		if err != nil {
			return nil, fmt.Errorf("FindItems() > %w", err)
		}
		inTopic = make(map[string]bool, len(items))
		for _, item := range items {
			inTopic[item.ID] = true
		}
	}

	type key struct {
		itemID string
		day    string
		bucket timing.Bucket
	}
	indexes := make(map[key]int)
	var counts []store.TimingCount
	for _, session := range sessions {
		if inTopic != nil && !inTopic[session.ItemID] {
			continue
		}
		k := key{
			itemID: session.ItemID,
			day:    gamification.LocalDate(session.ReviewedAt, time.UTC),
			bucket: timing.Classify(session.TimingBonus),
		}
		i, ok := indexes[k]
		if !ok {
			i = len(counts)
			indexes[k] = i
			counts = append(counts, store.TimingCount{ItemID: k.itemID, Day: k.day, Bucket: k.bucket})
		}
		counts[i].Sessions++
	}
	return counts, nil
}

func buildReport(counts []store.TimingCount, period Period) (*TimingReport, error) {
	periods := make(map[string]*Counts)
	items := make(map[string]*Counts)
	report := &TimingReport{}
	for _, count := range counts {
		key, err := periodKey(count.Day, period)
		if err != nil {
			return nil, err
		}
		if periods[key] == nil {
			periods[key] = &Counts{}
		}
		periods[key].add(count.Bucket, count.Sessions)
		if items[count.ItemID] == nil {
			items[count.ItemID] = &Counts{}
		}
		items[count.ItemID].add(count.Bucket, count.Sessions)
		report.Totals.add(count.Bucket, count.Sessions)
	}

	report.Periods = make([]PeriodCounts, 0, len(periods))
	for key, c := range periods {
		report.Periods = append(report.Periods, PeriodCounts{Period: key, Counts: *c})
	}
	slices.SortFunc(report.Periods, func(a, b PeriodCounts) int {
		return strings.Compare(b.Period, a.Period)
	})

	report.Items = make([]ItemCounts, 0, len(items))
	for itemID, c := range items {
		report.Items = append(report.Items, ItemCounts{ItemID: itemID, Counts: *c})
	}
	slices.SortFunc(report.Items, func(a, b ItemCounts) int {
		return strings.Compare(a.ItemID, b.ItemID)
	})
	return report, nil
}

// periodKey maps a UTC day to the period containing it. Weeks start on Monday.
func periodKey(day string, period Period) (string, error) {
	t, err := time.Parse(gamification.DateLayout, day)
	if err != nil {
		return "", fmt.Errorf("time.Parse(%s) > %w", day, err)
	}
	switch period {
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format(gamification.DateLayout), nil
	case PeriodMonth:
		return t.Format("2006-01"), nil
	default:
		return day, nil
	}
}
