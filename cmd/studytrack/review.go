package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/cli"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/mastery"
	"github.com/at-ishikawa/studytrack/internal/review"
)

func newReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review <item id> <again|hard|good|easy>",
		Short: "Record a review of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			difficulty, err := learning.ParseDifficulty(args[1])
			if err != nil {
				return err
			}

			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)
			defer printer.Notify(components.Decisions, components.Engine)()

			outcome, err := components.Service.Review(cmd.Context(), review.Request{
				UserID:     components.Config.UserID,
				ItemID:     args[0],
				Difficulty: difficulty,
				ReviewedAt: now(),
			})
			if err != nil {
				return err
			}
			printer.Outcome(outcome)
			return nil
		},
	}
}

func newSessionCommand() *cobra.Command {
	var topicID string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Review the due items one by one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)
			defer printer.Notify(components.Decisions, components.Engine)()

			session := cli.NewReviewSessionCLI(components.Service, printer, cmd.InOrStdin(), components.Config.UserID, topicID)
			return session.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "Only review items of this topic")
	return cmd
}

func newDecideCommand() *cobra.Command {
	var days float64

	cmd := &cobra.Command{
		Use:   "decide <item id> <mastered|maintenance|repeat|archived>",
		Short: "Decide what happens to an item that reached the mastery threshold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := mastery.ParseDecision(args[1])
			if err != nil {
				return err
			}
			var maintenanceDays *float64
			if cmd.Flags().Changed("days") {
				maintenanceDays = &days
			}

			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)
			defer printer.Notify(components.Decisions, components.Engine)()

			decided, err := components.Service.Decide(cmd.Context(), components.Config.UserID, args[0], decision, maintenanceDays, now())
			if err != nil {
				return err
			}
			printer.Decided(decided)
			return nil
		},
	}
	cmd.Flags().Float64Var(&days, "days", 0, "Maintenance interval in days, capped per learning mode")
	return cmd
}
