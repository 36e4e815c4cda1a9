// Package server wires configuration, storage, services and the HTTP
// transport into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/logging"
	"github.com/dmitrijs2005/textify/internal/server/config"
	"github.com/dmitrijs2005/textify/internal/server/httpserver"
	"github.com/dmitrijs2005/textify/internal/server/repositories/memory"
	"github.com/dmitrijs2005/textify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/textify/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpserver.HTTPServer
}

// NewApp validates c, opens storage (running migrations for PostgreSQL) and
// builds the services. Logs go to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(w, c.LogLevel)

	var (
		tx dbx.Transactor
		m  repomanager.RepositoryManager
		db *sql.DB
	)

	switch c.StorageDriver {
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		tx, m = store, store

	default:
		var err error
		db, err = sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}

		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		tx, m = dbx.NewSQLTransactor(db, nil), pm
	}

	us, err := services.NewUserService(tx, m, c, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}
	ds := services.NewDocumentService(tx, m, logger)

	srv := httpserver.NewHTTPServer(httpserver.Options{
		Address:         c.EndpointAddrHTTP,
		AllowedOrigins:  c.CORSAllowedOrigins,
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, us, ds)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// NewAppFromEnv is NewApp logging to stdout.
func NewAppFromEnv(ctx context.Context, c *config.Config) (*App, error) {
	return NewApp(ctx, c, os.Stdout)
}

// Run serves until ctx is cancelled or the process receives SIGINT,
// SIGTERM or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	err := app.server.Run(ctx)

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close error", "error", cerr.Error())
		}
	}

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}
