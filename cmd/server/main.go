package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Interne packages
	"automation-worker/internal/api"
	"automation-worker/internal/automation"
	"automation-worker/internal/automation/action"
	"automation-worker/internal/config"
	"automation-worker/internal/database"
	"automation-worker/internal/deliverer"
	"automation-worker/internal/logger"
	"automation-worker/internal/messaging"
	"automation-worker/internal/observability"
	"automation-worker/internal/store"
	"automation-worker/internal/worker"

	// Externe packages
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Laad configuratie (.env)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialiseer logger
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		panic("Could not initialize logger: " + err.Error()) // Can't log if logger fails
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Maak verbinding met de database
	pool, err := database.ConnectDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("could not connect to the database", zap.Error(err))
		return
	}
	defer pool.Close()

	// 4. Voer migraties uit
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.RunMigrations, log); err != nil {
		log.Error("database migrations failed", zap.Error(err))
		return
	}

	// 5. Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Error("could not initialize metrics", zap.Error(err))
		return
	}

	server, appWorker, err := run(cfg, log, pool, metricsHandler)
	if err != nil {
		log.Error("could not start application", zap.Error(err))
		return
	}

	go func() {
		log.Info("starting API server", zap.String("addr", server.Addr), zap.String("component", "main"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("could not start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", zap.String("component", "main"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if err := appWorker.Stop(shutdownCtx); err != nil {
		log.Error("worker shutdown failed", zap.Error(err))
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", zap.Error(err))
	}
}

// run wires the application and starts the worker scheduler. The returned
// server is not yet listening.
func run(cfg *config.Config, log *zap.Logger, db database.Querier, metricsHandler http.Handler) (*http.Server, *worker.Worker, error) {
	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("could not create metrics: %w", err)
	}

	// Store laag
	dbStore := store.NewStore(db, log)

	// Uitgaand HTTP verkeer: webhooks en de messaging backend
	httpDeliverer := deliverer.NewHTTPDeliverer(cfg.HTTPClientTimeout)

	dispatcher := action.NewDispatcher(action.Dependencies{
		Messages:  dbStore,
		Statuses:  dbStore,
		Sender:    messaging.NewClient(httpDeliverer),
		Deliverer: httpDeliverer,
		MaxDelay:  cfg.Worker.MaxDelay,
		Logger:    log,
	}, metrics)

	engine := automation.NewEngine(dbStore, dispatcher, log)

	appWorker := worker.NewWorker(dbStore, engine, cfg.Worker, metrics, log)
	if err := appWorker.Start(); err != nil {
		return nil, nil, err
	}

	apiServer := api.NewServer(dbStore, appWorker, metricsHandler, cfg, log)

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           apiServer.Router,
		ReadHeaderTimeout: 5 * time.Second,
		// Een batch met delay-acties mag langer duren dan een gewone request
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return server, appWorker, nil
}
