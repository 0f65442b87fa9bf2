package datasync

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// Snapshot holds all data of one user.
type Snapshot struct {
	UserID            string                     `yaml:"user_id"`
	ExportedAt        time.Time                  `yaml:"exported_at"`
	Topics            []learning.Topic           `yaml:"topics"`
	Items             []learning.Item            `yaml:"items"`
	ReviewSessions    []learning.ReviewSession   `yaml:"review_sessions"`
	Stats             *gamification.Stats        `yaml:"stats,omitempty"`
	Achievements      []gamification.Achievement `yaml:"achievements"`
	DailyStats        []gamification.DailyStats  `yaml:"daily_stats"`
	PendingOperations []PendingOperation         `yaml:"pending_operations,omitempty"`
}

// Exporter reads a gateway and returns a Snapshot.
type Exporter struct {
	gw    store.Gateway
	queue Queue
}

// NewExporter creates an Exporter. queue may be nil when nothing is queued locally.
func NewExporter(gw store.Gateway, queue Queue) *Exporter {
	return &Exporter{gw: gw, queue: queue}
}

// Export reads all data of userID.
func (e *Exporter) Export(ctx context.Context, userID string, now time.Time) (*Snapshot, error) {
	topics, err := e.gw.FindTopics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gw.FindTopics() > %w", err)
	}
	items, err := e.gw.FindItems(ctx, learning.ItemFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("gw.FindItems() > %w", err)
	}
	sessions, err := e.gw.FindReviewSessions(ctx, learning.SessionFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("gw.FindReviewSessions() > %w", err)
	}
	stats, err := e.gw.FindStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gw.FindStats() > %w", err)
	}
	achievements, err := e.gw.FindAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gw.FindAchievements() > %w", err)
	}
	days, err := e.gw.FindDailyStatsRange(ctx, userID, "", "")
	if err != nil {
		return nil, fmt.Errorf("gw.FindDailyStatsRange() > %w", err)
	}

	snapshot := &Snapshot{
		UserID:         userID,
		ExportedAt:     now,
		Topics:         topics,
		Items:          items,
		ReviewSessions: sessions,
		Stats:          stats,
		Achievements:   achievements,
		DailyStats:     days,
	}
	if e.queue != nil {
		ops, err := e.queue.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("queue.List() > %w", err)
		}
		for _, op := range ops {
			if op.UserID == userID {
				snapshot.PendingOperations = append(snapshot.PendingOperations, op)
			}
		}
	}
	return snapshot, nil
}

// WriteYAML encodes snapshot to w.
func WriteYAML(w io.Writer, snapshot *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("yaml.Encode() > %w", err)
	}
	return enc.Close()
}
