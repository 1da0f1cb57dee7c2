// Package main implements the POS API server: migrations, service wiring,
// middleware, and graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	app "github.com/brickoven/pos/internal/app"
	"github.com/brickoven/pos/internal/app/httpapi"
	"github.com/brickoven/pos/internal/app/storage/postgres"
	"github.com/brickoven/pos/internal/config"
	"github.com/brickoven/pos/internal/middleware"
	"github.com/brickoven/pos/internal/platform/migrations"
	"github.com/brickoven/pos/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/server.yaml", "Path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	log := logger.NewDefault("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	stores := app.Stores{}
	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		defer db.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.Apply(migrateCtx, db); err != nil {
			cancel()
			log.WithError(err).Fatal("apply migrations")
		}
		cancel()

		pg := postgres.New(db)
		stores = app.Stores{
			Settings: pg,
			Menu:     pg,
			Layout:   pg,
			Drivers:  pg,
			Orders:   pg,
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_DSN not set; using in-memory storage")
	}

	application, err := app.New(stores, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Fatal("start application")
	}

	router := httpapi.NewRouter(application)
	router.Handle("/metrics", promhttp.HandlerFor(application.Metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.Use(middleware.MetricsMiddleware(application.Metrics))

	var handler http.Handler = router
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(10 * time.Minute)
	handler = limiter.Handler(handler)
	if len(cfg.AllowedOrigins) > 0 {
		handler = middleware.NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("application stop")
	}
	limiter.StopCleanup()
}
