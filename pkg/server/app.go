package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChainPulse/internal/domain/repository"
	"ChainPulse/internal/service/retry"
	"ChainPulse/internal/usecase"
	"ChainPulse/pkg/cache"
	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	"ChainPulse/pkg/logger"
)

// App owns the application lifecycle: schema init with a bounded retry
// budget, the analysis loop, the ops HTTP server, and graceful teardown
// of every infrastructure client.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	engine  *usecase.Engine
	store   repository.MarketStore
	events  repository.EventPublisher
	cache   cache.Service
	handler xhttp.Handler

	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	log *logger.Logger,
	engine *usecase.Engine,
	store repository.MarketStore,
	events repository.EventPublisher,
	cacheSvc cache.Service,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		engine:  engine,
		store:   store,
		events:  events,
		cache:   cacheSvc,
		handler: handler,
	}
}

// Run starts the application and blocks until interrupted. Setup failures
// beyond the retry budget are fatal; steady-state failures are absorbed
// by the engine's own cycle discipline.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setup := retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.Linear(10 * time.Second),
	}
	if err := setup.Do(ctx, a.store.Init); err != nil {
		a.log.Error("store initialization failed", logger.Error(err))
		return err
	}
	a.log.Info("market store ready")

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return err
	}
	a.log.Info("ops server listening", logger.Int("port", a.cfg.Server.Port))

	go func() {
		if err := a.engine.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("analysis loop stopped", logger.Error(err))
		}
	}()
	a.log.Info("analysis loop started",
		logger.Strings("chains", a.cfg.ChainSymbols()),
		logger.Duration("interval", a.cfg.Triggers.BaseInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown stops the HTTP server and releases infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	if err := a.events.Close(); err != nil {
		a.log.Warn("event publisher close error", logger.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn("cache close error", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close error", logger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
