package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/learning"
)

func newItemCommand() *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Manage learning items",
	}
	itemCmd.AddCommand(newItemAddCommand(), newItemListCommand(), newItemDueCommand())
	return itemCmd
}

func newItemAddCommand() *cobra.Command {
	var mode ModeFlag
	var priority int

	cmd := &cobra.Command{
		Use:   "add <topic id> <content>",
		Short: "Add an item to a topic",
		Long:  "Add an item to a topic. The item inherits the mode and priority of the topic unless overridden.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			var opts []learning.ItemOption
			if mode != "" {
				opts = append(opts, learning.WithMode(learning.Mode(mode)))
			}
			if cmd.Flags().Changed("priority") {
				opts = append(opts, learning.WithPriority(priority))
			}
			item, err := components.Service.AddItem(cmd.Context(), components.Config.UserID, args[0], args[1], now(), opts...)
			if err != nil {
				return err
			}
			printer.Items([]learning.Item{*item})
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Var(&mode, "mode", "Learning mode. Options: ultracram, cram, steady, extended")
	flags.IntVar(&priority, "priority", 0, "Priority from 1 to 10")
	return cmd
}

func newItemListCommand() *cobra.Command {
	var topicID string
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := learning.ItemFilter{TopicID: topicID}
			for _, s := range statuses {
				status := learning.MasteryStatus(s)
				if !status.Valid() {
					return learning.NewValidationError("status", s, "must be one of active, mastered, archived, maintenance, repeat")
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			filter.UserID = components.Config.UserID
			items, err := components.Gateway.FindItems(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printer.Items(items)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&topicID, "topic", "", "Only list items of this topic")
	flags.StringSliceVar(&statuses, "status", nil, "Only list items with these mastery statuses")
	return cmd
}

func newItemDueCommand() *cobra.Command {
	var topicID string

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List items due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			items, err := components.Service.DueItems(cmd.Context(), components.Config.UserID, topicID, now())
			if err != nil {
				return err
			}
			printer.Items(items)
			return nil
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "Only list items of this topic")
	return cmd
}
