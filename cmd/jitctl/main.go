package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Sohamiota/Target-JIT-org/internal/repository/postgres"
	"github.com/Sohamiota/Target-JIT-org/internal/types"
	"github.com/Sohamiota/Target-JIT-org/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, types.DBKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(types.DBKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(types.DBKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

// repoDB adapts the raw connection for the sqlx repository layer.
func repoDB(c *cli.Context) (*postgres.DB, error) {
	sqlDB, err := dbFromContext(c)
	if err != nil {
		return nil, err
	}
	return postgres.Wrap(sqlx.NewDb(sqlDB, "pgx")), nil
}

func main() {
	logger.SetLevel("info")

	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "jitctl",
		Usage: "Operations toolkit for the inventory optimization service",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logger.SetLevel("debug")
			}
			return nil
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
			newGenerateCommand(),
			newSeedCommand(),
			newOptimizeCommand(),
			newPolicyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending SQL migrations",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:    "migrations-dir",
				Usage:   "Directory containing SQL migrations",
				Value:   "./scripts/migrations",
				EnvVars: []string{"MIGRATIONS_DIR"},
			},
			&cli.BoolFlag{
				Name:    "reset",
				Usage:   "Drop the public schema and re-run all migrations (development only)",
				EnvVars: []string{"RESET_DB"},
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: runMigrate,
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	if err := maybeResetDatabase(c.Context, db, c.Bool("reset")); err != nil {
		return err
	}
	return runMigrations(c.Context, db, c.String("migrations-dir"))
}

func maybeResetDatabase(ctx context.Context, db *sql.DB, reset bool) error {
	if !reset {
		return nil
	}

	log.Warn().Msg("resetting database schema")
	for _, stmt := range []string{
		"DROP SCHEMA IF EXISTS public CASCADE",
		"CREATE SCHEMA public",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies every *.sql file under dir in lexical order,
// recording applied versions in schema_migrations so reruns are no-ops.
func runMigrations(ctx context.Context, db *sql.DB, dir string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migrations in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(paths)

	applied := 0
	for _, path := range paths {
		version := strings.TrimSuffix(filepath.Base(path), ".sql")

		var exists bool
		if err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", version, err)
		}
		if exists {
			continue
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", path, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, string(contents)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)", version,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}

		log.Info().Str("version", version).Msg("migration applied")
		applied++
	}

	log.Info().Int("applied", applied).Int("total", len(paths)).Msg("migrations up to date")
	return nil
}
