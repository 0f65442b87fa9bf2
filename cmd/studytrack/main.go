package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/bootstrap"
	"github.com/at-ishikawa/studytrack/internal/cli"
	"github.com/at-ishikawa/studytrack/internal/config"
)

var (
	configFile string
	debugMode  bool
	// now is replaced in tests.
	now = time.Now
)

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "studytrack",
		Short:         "Spaced repetition tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode, "")
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newMigrateCommand(),
		newTopicCommand(),
		newItemCommand(),
		newReviewCommand(),
		newSessionCommand(),
		newDecideCommand(),
		newStatsCommand(),
		newSyncCommand(),
		newExportCommand(),
		newBridgeCommand(),
	)
	return rootCommand
}

// setupLogger configures the default logger. debugMode wins over the configured level.
func setupLogger(debugMode bool, configuredLevel string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(configuredLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loader.Load() > %w", err)
	}
	setupLogger(debugMode, cfg.Log.Level)
	return cfg, nil
}

// openComponents loads the config and builds the engine. The caller closes the components.
func openComponents(cmd *cobra.Command) (*bootstrap.Components, *cli.Printer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	components, err := bootstrap.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap.Open() > %w", err)
	}
	return components, cli.NewPrinter(cmd.OutOrStdout(), cfg.Location()), nil
}

func closeComponents(components *bootstrap.Components) {
	if err := components.Close(); err != nil {
		slog.Default().Warn("failed to close", "error", err)
	}
}
