package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show points, levels and review timing",
	}
	statsCmd.AddCommand(newStatsShowCommand(), newStatsTimingCommand(), newStatsRebuildCommand())
	return statsCmd
}

func newStatsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show level, streak and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			ctx := cmd.Context()
			userID := components.Config.UserID
			progress, err := components.Engine.Progress(ctx, userID)
			if err != nil {
				return err
			}
			achievements, err := components.Gateway.FindAchievements(ctx, userID)
			if err != nil {
				return err
			}
			printer.Progress(progress, components.Engine.Curve())
			printer.Achievements(achievements)
			return nil
		},
	}
}

// parseDate parses a local calendar date. from is inclusive, and to is made exclusive by adding a day.
func parseDate(field, value string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(gamification.DateLayout, value, loc)
	if err != nil {
		return nil, learning.NewValidationError(field, value, "must be YYYY-MM-DD")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	t = t.UTC()
	return &t, nil
}

func newStatsTimingCommand() *cobra.Command {
	period := PeriodFlag(statistics.PeriodDay)
	var topicID, itemID, from, to string

	cmd := &cobra.Command{
		Use:   "timing",
		Short: "Count reviews per timing bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			loc := components.Config.Location()
			fromTime, err := parseDate("from", from, loc, false)
			if err != nil {
				return err
			}
			toTime, err := parseDate("to", to, loc, true)
			if err != nil {
				return err
			}
			report, err := components.Aggregator.Aggregate(cmd.Context(), statistics.Filter{
				UserID:  components.Config.UserID,
				TopicID: topicID,
				ItemID:  itemID,
				From:    fromTime,
				To:      toTime,
				Period:  statistics.Period(period),
			})
			if err != nil {
				return err
			}
			printer.Timing(report)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Var(&period, "period", "Group by period. Options: day, week, month")
	flags.StringVar(&topicID, "topic", "", "Only count reviews of this topic")
	flags.StringVar(&itemID, "item", "", "Only count reviews of this item")
	flags.StringVar(&from, "from", "", "First day, YYYY-MM-DD")
	flags.StringVar(&to, "to", "", "Last day, YYYY-MM-DD")
	return cmd
}

func newStatsRebuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute the stats from the daily history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			ctx := cmd.Context()
			userID := components.Config.UserID
			if _, err := components.Engine.Rebuild(ctx, userID, now()); err != nil {
				return err
			}
			progress, err := components.Engine.Progress(ctx, userID)
			if err != nil {
				return fmt.Errorf("engine.Progress() > %w", err)
			}
			printer.Progress(progress, components.Engine.Curve())
			return nil
		},
	}
}
