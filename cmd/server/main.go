package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/gameaccounts/internal/api"
	"github.com/mcoot/gameaccounts/internal/config"
	"github.com/mcoot/gameaccounts/internal/factory"
	"github.com/mcoot/gameaccounts/internal/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("ACCOUNTS_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, factory.FromConfig(cfg, logger))
	if err != nil {
		return err
	}
	if err := app.Store.Init(ctx); err != nil {
		return err
	}
	defer func() {
		teardownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Store.Teardown(teardownCtx); err != nil {
			logger.Error("store teardown", slog.String("error", err.Error()))
		}
	}()

	logger.Info("account store ready",
		slog.String("storage", cfg.Storage.Type),
		slog.Any("providers", app.Broker.Providers()),
	)

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Identity:   app.Identity,
		Sessions:   app.Sessions,
		Signer:     app.Signer,
		Providers:  app.Broker,
		TrustProxy: cfg.Server.TrustProxy,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		Identity:      app.Identity,
		Sessions:      app.Sessions,
		Signer:        app.Signer,
		Broker:        app.Broker,
		Clock:         app.Clock,
		Random:        app.Random,
		DashboardURL:  cfg.Web.DashboardURL,
		LoginURL:      cfg.Web.LoginURL,
		SecureCookies: cfg.Session.SecureCookies,
		TrustProxy:    cfg.Server.TrustProxy,
	})

	// Combine routers. /api/user belongs to the browser routes.
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	server := api.NewServer(mux, serverConfig, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		return app.Sessions.RunSweeper(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		return app.Broker.RunSweeper(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
