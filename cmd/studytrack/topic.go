package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/learning"
)

func newTopicCommand() *cobra.Command {
	topicCmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage topics",
	}
	topicCmd.AddCommand(newTopicAddCommand(), newTopicListCommand())
	return topicCmd
}

func newTopicAddCommand() *cobra.Command {
	mode := ModeFlag(learning.ModeSteady)
	var description string
	var priority int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			topic, err := components.Service.CreateTopic(cmd.Context(), components.Config.UserID, args[0], description,
				learning.Mode(mode), priority, now())
			if err != nil {
				return err
			}
			printer.Topics([]learning.Topic{*topic})
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Var(&mode, "mode", "Learning mode. Options: ultracram, cram, steady, extended")
	flags.StringVar(&description, "description", "", "Description of the topic")
	flags.IntVar(&priority, "priority", 5, "Priority from 1 to 10")
	return cmd
}

func newTopicListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			topics, err := components.Gateway.FindTopics(cmd.Context(), components.Config.UserID)
			if err != nil {
				return err
			}
			printer.Topics(topics)
			return nil
		},
	}
}
