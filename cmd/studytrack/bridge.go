package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/bootstrap"
	"github.com/at-ishikawa/studytrack/internal/bridge"
)

func newBridgeCommand() *cobra.Command {
	bridgeCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Expose the persistence gateway over HTTP",
	}
	bridgeCmd.AddCommand(newBridgeServeCommand())
	return bridgeCmd
}

func newBridgeServeCommand() *cobra.Command {
	var allowedOrigin string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway of this deployment to bridge clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, err := openComponents(cmd)
			if err != nil {
				return err
			}
			app := bootstrap.New()
			app.AddCloser("components", components.Close)

			var opts []bridge.ServerOption
			if allowedOrigin != "" {
				opts = append(opts, bridge.WithAllowedOrigin(allowedOrigin))
			}
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", components.Config.Bridge.Port),
				Handler: bridge.NewServer(components.Gateway, opts...).Handler(),
			}
			app.AddShutdownHook(srv.Shutdown)

			return app.Run(cmd.Context(), func(ctx context.Context) error {
				if components.Monitor != nil {
					go func() {
						if err := components.Monitor.Run(ctx); err != nil {
							slog.Default().Error("connectivity monitor stopped", "error", err)
						}
					}()
				}
				slog.Default().Info("starting the bridge", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&allowedOrigin, "allow-origin", "", "Origin allowed to call the bridge from a browser")
	return cmd
}
