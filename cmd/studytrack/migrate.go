package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studytrack/internal/bootstrap"
	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/schemas"
)

func newMigrateCommand() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply the schema migrations to the local SQLite database, or to the remote MySQL database with --remote.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !remote {
				db, err := bootstrap.OpenLocal(ctx, cfg.Local.Path)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Local database %s is up to date\n", cfg.Local.Path)
				return nil
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() { _ = db.Close() }()
			applied, err := database.Migrate(ctx, db, schemas.Migrations, "migrations")
			if err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations to %s\n", len(applied), cfg.Database.Database)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Migrate the remote MySQL database")
	return cmd
}
