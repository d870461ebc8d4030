// Package server initializes and runs the fitkeeper server: it opens the
// database, applies migrations, and runs the HTTP API and the gRPC health
// endpoint until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fitkeeper/internal/server/config"
	"github.com/dmitrijs2005/fitkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitkeeper/internal/server/services"
	"github.com/dmitrijs2005/fitkeeper/internal/server/telemetry"

	gs "github.com/dmitrijs2005/fitkeeper/internal/server/grpc"
)

// Runner is a long-running component stopped by cancelling ctx.
type Runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	servers map[string]Runner

	shutdownTelemetry telemetry.ShutdownFunc
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, c.OTLPEndpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := OpenStorage(ctx, c, rm, logger)
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, err
	}

	tokens := NewTokenService(c)
	as, err := NewAccountService(c, db, rm, tokens, logger)
	if err != nil {
		_ = db.Close()
		_ = shutdownTelemetry(ctx)
		return nil, err
	}
	ms := services.NewMembershipService(db, rm, logger, services.WithPaging(services.Paging{
		DefaultLimit: c.ListDefaultLimit,
		MaxLimit:     c.ListMaxLimit,
	}))
	gate := auth.NewGate(tokens, rm.Accounts(db), logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Accounts:           as,
		Memberships:        ms,
		Gate:               gate,
		DB:                 db,
		Logger:             logger,
		LoginRatePerMinute: c.LoginRatePerMinute,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		servers: map[string]Runner{
			"http": httpapi.NewHTTPServer(c.EndpointAddrHTTP, router, logger),
			"grpc": gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
		},
		shutdownTelemetry: shutdownTelemetry,
	}, nil
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

// startServer runs s and cancels the app if it fails.
func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, s Runner) {
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then releases the
// database and flushes telemetry.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for name, s := range app.servers {
		name, s := name, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startServer(ctx, cancelFunc, name, s)
		}()
	}

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	if app.shutdownTelemetry != nil {
		if err := app.shutdownTelemetry(ctx); err != nil {
			app.logger.Error(ctx, "telemetry shutdown error", "error", err)
		}
	}
}
