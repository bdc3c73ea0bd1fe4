package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-jwt-auth"
	"github.com/goliatone/go-jwt-auth/middleware/jwtware"
)

func main() {
	configPath := flag.String("config", getEnvOrDefault("AUTHSVC_CONFIG_PATH", "config.yaml"),
		"Path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := auth.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("authsvc stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *serviceConfig, logger auth.Logger) error {
	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := newApp(ctx, cfg, logger, db, registry)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("authsvc listening", "addr", cfg.HTTP.Addr)
		errCh <- srv.Serve(cfg.HTTP.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	return srv.WrappedRouter().ShutdownWithTimeout(cfg.HTTP.ShutdownTimeout)
}

// newApp wires storage, the auth core and the HTTP surface.
func newApp(ctx context.Context, cfg *serviceConfig, logger auth.Logger, db *bun.DB, registry *prometheus.Registry) (router.Server[*fiber.App], error) {
	store := auth.NewUsersStore(db)
	if err := store.CreateSchema(ctx); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenServiceFromConfig(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}

	metrics := auth.NewMetrics("authsvc", registry)

	auther := auth.NewAuthenticator(store, auth.NewBcryptVerifier(cfg.Auth.GetPasswordCost()), tokens).
		WithLogger(logger).
		WithActivitySink(auth.LoggerActivitySink(logger)).
		WithMetrics(metrics)

	gate := auth.NewGate(store, tokens, cfg.Auth).
		WithLogger(logger).
		WithMetrics(metrics)

	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName:               "authsvc",
			DisableStartupMessage: true,
			ErrorHandler:          auth.NewErrorHandler(logger),
		})

		app.Use(recover.New())
		app.Use(requestid.New())
		app.Use(cors.New(cors.Config{
			AllowOrigins: joinOrigins(cfg.HTTP.AllowedOrigins),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		}))

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))).
			Name("metrics.get")

		return app
	})

	r := srv.Router()
	r.Use(jwtware.New(jwtware.Config{
		Gate:       gate,
		ContextKey: cfg.Auth.GetContextKey(),
	}))

	controller := auth.NewAuthController(
		auth.WithAuthenticator(auther),
		auth.WithControllerLogger(logger),
		auth.WithControllerDebug(cfg.Log.Level == "debug"),
	)

	auth.RegisterAuthRoutes(r, controller, jwtware.RequireAuthority(auth.AuthorityAdmin))

	r.Get("/api/me", controller.CurrentPrincipal, jwtware.RequireAuthenticated()).
		SetName("api.me.get")

	r.Get("/health", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, map[string]string{"status": "ok"})
	}).SetName("health.get")

	return srv, nil
}

func joinOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
