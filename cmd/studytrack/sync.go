package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/datasync"
)

func newSyncCommand() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued writes against the remote store",
	}
	syncCmd.AddCommand(newSyncRunCommand(), newSyncStatusCommand())
	return syncCmd
}

func newSyncRunCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe the remote store and sync the queue",
		Long:  "Probe the remote store and sync the queue. With --watch, keep probing until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			ctx := cmd.Context()
			if components.Monitor == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sync in the cloud deployment")
				return nil
			}
			if watch {
				unsubscribe := components.Coordinator.Subscribe(printer.SyncStatus)
				defer unsubscribe()
				return components.Monitor.Run(ctx)
			}

			if !components.Monitor.Probe(ctx) {
				printer.SyncStatus(components.Coordinator.Status())
				return nil
			}
			result, err := components.Coordinator.SyncAll(ctx)
			if err != nil {
				return err
			}
			printer.SyncResult(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep probing and syncing until interrupted")
	return cmd
}

func newSyncStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and pending operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, printer, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			ctx := cmd.Context()
			if components.Monitor != nil {
				components.Monitor.Probe(ctx)
			}
			pending, err := components.Coordinator.PendingOperationsCount(ctx)
			if err != nil {
				return err
			}
			status := components.Coordinator.Status()
			status.PendingOperations = pending
			printer.SyncStatus(status)
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data of the user as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, err := openComponents(cmd)
			if err != nil {
				return err
			}
			defer closeComponents(components)

			snapshot, err := components.Exporter.Export(cmd.Context(), components.Config.UserID, now())
			if err != nil {
				return err
			}
			if output == "" {
				return datasync.WriteYAML(cmd.OutOrStdout(), snapshot)
			}

			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("os.MkdirAll() > %w", err)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("os.Create(%s) > %w", output, err)
			}
			defer func() { _ = f.Close() }()
			if err := datasync.WriteYAML(f, snapshot); err != nil {
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file. Defaults to stdout")
	return cmd
}
