package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) NOT NULL PRIMARY KEY,
	applied_at DATETIME NOT NULL
)`

// Migrate applies every *.sql file under dir in fsys that has not been applied yet,
// in lexical order. Each file may hold several statements separated by semicolons.
func Migrate(ctx context.Context, db *sqlx.DB, fsys fs.FS, dir string) ([]string, error) {
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations > %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("fs.ReadDir(%s) > %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	var applied []string
	for _, name := range files {
		var count int
		if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", name); err != nil {
			return applied, fmt.Errorf("check migration %s > %w", name, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("fs.ReadFile(%s) > %w", name, err)
		}

		err = RunInTx(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
			for _, stmt := range SplitStatements(string(content)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("exec %q > %w", firstLine(stmt), err)
				}
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", name, time.Now().UTC())
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s > %w", name, err)
		}
		slog.Default().Debug("applied migration", "version", name)
		applied = append(applied, name)
	}
	return applied, nil
}

// SplitStatements splits a migration file into statements, dropping comments and blanks.
func SplitStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
