package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/finance-insights/internal/cache"
	"github.com/Dan9191/finance-insights/internal/config"
	"github.com/Dan9191/finance-insights/internal/handler"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/Dan9191/finance-insights/internal/scheduler"
	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/Dan9191/finance-insights/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store repository.Store
	switch cfg.Store {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		repo := repository.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to prepare database: %v", err)
		}
		store = repo
	}

	insightsCache, err := cache.NewInsightsCache(cfg.InsightsCacheTTL)
	if err != nil {
		logger.Fatalf("Failed to create cache: %v", err)
	}
	defer insightsCache.Close()

	// Initialize layers
	var mailer service.Mailer
	if cfg.MailEnabled() {
		mailer = email.NewSender(cfg, logger)
	}
	svc := service.NewService(store, logger, cfg, insightsCache, mailer)
	h := handler.NewHandler(svc, logger)

	sched, err := scheduler.New(svc, logger, cfg.AlertSweepSchedule, cfg.MonthlyReportSchedule)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
