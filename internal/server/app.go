// Package server initializes and runs the jobhub server: it opens the
// database, applies migrations, wires the auth gate, the live registry and
// the HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/jobhub/internal/logging"
	"github.com/dmitrijs2005/jobhub/internal/server/auth"
	"github.com/dmitrijs2005/jobhub/internal/server/config"
	"github.com/dmitrijs2005/jobhub/internal/server/live"
	"github.com/dmitrijs2005/jobhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/jobhub/internal/server/rest"
	"github.com/dmitrijs2005/jobhub/internal/server/services"
	"github.com/gin-gonic/gin"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *live.Registry
	http     *rest.Server
}

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return newApp(c, logger, db, rm), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	authority := auth.NewAuthority([]byte(c.SecretKey), c.AccessTokenValidityDuration, rm.Users(db))
	registry := live.NewRegistry(logger, c.WSWriteTimeout)

	us := services.NewUserService(db, rm, authority)
	ls := services.NewLogoService(c)

	gin.SetMode(gin.ReleaseMode)
	hs := rest.NewServer(c.EndpointAddrHTTP, logger, us, ls, authority, registry)

	return &App{config: c, logger: logger, db: db, registry: registry, http: hs}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or the HTTP server
// fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
