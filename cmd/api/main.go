package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"blogapi/docs"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/database/migration"
	handlers "blogapi/internal/http/handler"
	"blogapi/internal/http/middleware"
	"blogapi/internal/logger"
	"blogapi/internal/otel"
	"blogapi/internal/repository"
	"blogapi/internal/repository/mongodb"
	"blogapi/internal/repository/postgres"
	"blogapi/internal/service"
	"blogapi/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// @title Blog API
// @version 1.0
// @description CRUD service for blog posts backed by a document store.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}

	blogSvc := service.NewBlogService(repo, validation.New(), cfg.ListLimit)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		AppName:               "blogapi",
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// Register global middleware
	// Tracing runs first so the request logger can attach trace_id
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, repo, blogSvc, reg)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.Store).Msg("server_starting")
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := closeStore(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer flush failed")
	}
	log.Info().Msg("server_stopped")
}

// openStore connects the backend selected by cfg.Store and returns its
// repository together with a function that releases the connection.
func openStore(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (repository.BlogRepository, func(context.Context) error, error) {
	switch cfg.Store {
	case config.StoreMongo:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return mongodb.NewBlogMongo(coll, cfg.Mongo.Timeout), client.Disconnect, nil

	case config.StorePostgres:
		// PostgreSQL connection with pooling via database/sql
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewBlogPostgres(db), func(context.Context) error { return db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q (want %q or %q)", cfg.Store, config.StoreMongo, config.StorePostgres)
	}
}
