// Package commands implements the jobboard operator CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/cuongbtq/jobboard/internal/config"
	"github.com/cuongbtq/jobboard/internal/storage"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/cuongbtq/jobboard/shared/postgresql"
)

// AppContext holds what every command needs
type AppContext struct {
	Config   *config.Config
	Logger   *logger.Logger
	Database *postgresql.Client
	Storage  *storage.Storage
}

// NewAppContext loads configuration and connects to the datastore
func NewAppContext(ctx context.Context, cmd *cli.Command) (*AppContext, error) {
	// a missing .env is fine; the environment may already be set
	_ = godotenv.Load(cmd.String("env"))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgresql.NewClient(ctx, cfg.PostgresConfig(), appLogger.Logger)
	if err != nil {
		appLogger.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &AppContext{
		Config:   cfg,
		Logger:   appLogger,
		Database: db,
		Storage:  storage.NewStorage(db.GetDB(), appLogger.Logger),
	}, nil
}

// Close releases the resources held by the AppContext
func (ac *AppContext) Close() {
	if ac.Database != nil {
		if err := ac.Database.Close(); err != nil {
			ac.Logger.Warn("Failed to close database", slog.Any("error", err))
		}
	}
	ac.Logger.Close()
}
