package cli

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/kidscoin/internal/config"
	"github.com/dukerupert/kidscoin/internal/database"
	"github.com/dukerupert/kidscoin/internal/gateway"
	"github.com/dukerupert/kidscoin/internal/session"
	"github.com/dukerupert/kidscoin/internal/store"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

// App is the wired client: local state, remote gateway, session and engine.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *sql.DB
	Gateway *gateway.Client
	Session *session.Store
	Engine  *workflow.Engine
}

func Open(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	gw := gateway.NewClient(gateway.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
	}, logger)
	creds := store.NewCredentialStore(db, cfg.FamilyNamespace, cfg.Passphrase)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Gateway: gw,
		Session: session.New(gw, creds, logger),
		Engine:  workflow.NewEngine(gw, logger.With("component", "workflow")),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
