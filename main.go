package main

//go:generate swag init

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/satheeshds/orderledger/config"
	"github.com/satheeshds/orderledger/db"
	_ "github.com/satheeshds/orderledger/docs"
	"github.com/satheeshds/orderledger/events"
	"github.com/satheeshds/orderledger/handlers"
	"github.com/satheeshds/orderledger/reports"
	"github.com/satheeshds/orderledger/service"
	"github.com/satheeshds/orderledger/store"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title           Order Ledger API
// @version         1.0.0
// @description     API for products, customers, orders, payments, xlsx snapshots and sales reports.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

func main() {
	cfg := config.Load()

	// Configure structured logging
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Open database
	database, driver, err := db.Open(cfg.DB.Driver, cfg.DB.Path, cfg.DB.URL)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database, driver); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Settlement events go to redis when configured
	var publisher events.Publisher = events.Nop{}
	if cfg.Redis.Enabled() {
		rdb, err := config.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
	}

	reporter, err := reports.New()
	if err != nil {
		slog.Error("failed to open report engine", "error", err)
		os.Exit(1)
	}
	defer reporter.Close()

	// Set shared services for handlers
	handlers.Ledger = service.New(store.NewSQLStore(database, driver), publisher)
	handlers.Reports = reporter
	handlers.DefaultAccount = cfg.DefaultAccount

	rateLimit, err := handlers.RateLimit(cfg.RateLimit)
	if err != nil {
		slog.Error("invalid rate limit", "error", err)
		os.Exit(1)
	}

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(handlers.BasicAuth(cfg.Auth.User, cfg.Auth.Pass))
		r.Use(handlers.AccountScope)
		handlers.Routes(r)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
