// Package main is the entry point for the Travel Journal API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/collegeman/travel-journal/internal/config"
	"github.com/collegeman/travel-journal/internal/handler"
	"github.com/collegeman/travel-journal/internal/middleware"
	"github.com/collegeman/travel-journal/internal/repo"
	"github.com/collegeman/travel-journal/internal/service"
	"github.com/collegeman/travel-journal/internal/sweeper"
	"github.com/collegeman/travel-journal/migrations"
	"github.com/collegeman/travel-journal/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Migrations -------------------------------------------------------
	if cfg.AutoMigrate {
		if err := migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately, the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Repositories and services ---------------------------------------
	users := repo.NewUserRepo(pool)
	trips := repo.NewTripRepo(pool)
	stops := repo.NewStopRepo(pool)
	items := repo.NewItemRepo(pool)
	media := repo.NewMediaRepo(pool)
	collabs := repo.NewCollaboratorRepo(pool)
	events := repo.NewEventRepo(pool)
	refs := repo.NewTripRefRepo(pool)

	producer := service.NewEventProducer(events, refs, logger)

	tripSvc := service.NewTripService(trips, collabs, events)
	stopSvc := service.NewStopService(stops, collabs, events, producer)
	itemSvc := service.NewItemService(items, collabs, events, producer)
	collabSvc := service.NewCollaboratorService(collabs, users, events)
	mediaSvc := service.NewMediaService(media, collabs, producer)
	feedSvc := service.NewFeedService(events, collabs)

	// --- Retention sweeper ------------------------------------------------
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.New(events, cfg.Retention, cfg.SweepInterval, logger).Run(sweepCtx)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID, RealIP, Logger, Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(1 << 20)) // 1 MiB request bodies

	r.Get("/healthz", handler.Health)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	srvHandler := handler.NewServer(tripSvc, stopSvc, itemSvc, collabSvc, mediaSvc, feedSvc,
		handler.StreamConfig{
			Budget:     cfg.StreamBudget,
			Tick:       cfg.StreamTick,
			QueryLimit: cfg.EventQueryLimit,
			Lookback:   30 * time.Second,
		})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewAuth(users))
		r.Mount("/", srvHandler.Routes())
	})

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout must exceed the stream budget; the SSE handler clears the
	// write deadline per connection but the server-level timeout still guards
	// the handshake.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.StreamBudget + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for an OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing. The sweeper is
	// stopped first so no new deletes start during drain.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending goose migrations using the embedded SQL files.
// goose needs a *sql.DB, so this opens a short-lived connection separate from
// the pgx pool.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return err
	}
	return nil
}
