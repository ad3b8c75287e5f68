package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/vsales/internal/config"
	"github.com/olegiv/vsales/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vsales",
		Short: "Online vehicle sales",
		Long: `vsales serves the vehicle catalog, checkout and admin pages.

Configuration is read from VSALES_* environment variables and an optional
.env file in the working directory. Running vsales without a subcommand
starts the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newVersionCmd())
	return root
}

// loadConfig reads .env (if present) and the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// openDatabase opens the configured database and applies pending migrations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		slog.Info("initializing database", "driver", cfg.DBDriver, "path", cfg.DBPath)
	} else {
		slog.Info("initializing database", "driver", cfg.DBDriver, "host", cfg.DBHost, "name", cfg.DBName)
	}

	db, err := store.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	slog.Info("running database migrations")
	if err := store.MigrateDriver(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
