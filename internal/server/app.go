// Package server wires the directory server together: it opens the store,
// applies migrations, seeds the role table, builds the user service and
// serves the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/teamkeeper/internal/logging"
	"github.com/dmitrijs2005/teamkeeper/internal/server/config"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/teamkeeper/internal/server/roles"
	"github.com/dmitrijs2005/teamkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/teamkeeper/internal/server/grpc"
)

const healthCheckPeriod = 30 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userService *services.UserService
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, rm, err := repomanager.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, repomanager: rm}, nil
}

// prepare brings the schema up to date, makes sure every role exists and
// builds the user service over the loaded role registry.
func (app *App) prepare(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	created, err := roles.Seed(ctx, app.repomanager.Roles(app.db))
	if err != nil {
		return fmt.Errorf("role seed error: %w", err)
	}
	if created > 0 {
		app.logger.Info(ctx, "roles seeded", "created", created)
	}

	registry, err := roles.Load(ctx, app.repomanager.Roles(app.db))
	if err != nil {
		return fmt.Errorf("role registry error: %w", err)
	}
	if _, err := registry.Default(); err != nil {
		return err
	}
	app.logger.Info(ctx, "role registry loaded", "roles", registry.Len())

	app.userService = services.NewUserService(app.db, app.repomanager, registry, app.config, app.logger)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, healthCheckPeriod)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Users exposes the user service to in-process callers. It is nil until the
// store has been prepared.
func (app *App) Users() *services.UserService { return app.userService }

// Run prepares the store and serves until ctx is done or a signal arrives.
// The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.prepare(ctx); err != nil {
		app.logger.Error(ctx, "startup failed", "error", err)
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}
