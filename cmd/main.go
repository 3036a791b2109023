package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classdraw/internal/config"
	"classdraw/internal/handlers"
	"classdraw/internal/metrics"
	"classdraw/internal/models"
	"classdraw/internal/services"
	"classdraw/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	defer logger.Init("classdraw", cfg.Verbose, false, io.Discard).Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the entity store and seed it
	entityStore, err := openStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.Store, err)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Fatalf("Failed to load prize catalog: %v", err)
	}
	admin := models.User{ID: "admin-1", StudentID: cfg.AdminStudentID, Name: cfg.AdminName, IsAdmin: true}
	if err := store.Seed(ctx, entityStore, catalog, admin); err != nil {
		logger.Fatalf("Failed to seed store: %v", err)
	}

	// 3. Metrics and the live results feed
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	hub := handlers.NewResultsHub()
	go hub.Run(ctx)

	// 4. Initialize the Lottery Service
	engine := services.NewDrawEngine(cfg.WinProbability)
	lotteryService := services.NewLotteryService(entityStore, engine,
		services.WithMetrics(collector),
		services.WithPublisher(hub),
	)
	if prizes, err := lotteryService.Prizes(ctx); err == nil {
		collector.SetRemaining(prizes)
	}

	// 5. Start the background janitor to clean up inactive sessions
	janitor, err := services.StartJanitor(lotteryService, cfg.JanitorSchedule, cfg.SessionTTL)
	if err != nil {
		logger.Fatalf("Failed to start session janitor: %v", err)
	}
	defer janitor.Stop()

	// 6. Set up the router
	limiter := handlers.NewRateLimiter(cfg.RatePerMinute, 5*time.Minute)
	defer limiter.Stop()

	httpHandler := handlers.NewHTTPHandler(lotteryService, hub, limiter, cfg.SessionTTL)
	r := handlers.NewRouter(httpHandler, registry)

	// 7. Run the server
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s (store=%s)", cfg.Addr, cfg.Store)
		errCh <- r.Run(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		logger.Errorf("Server stopped: %v", err)
	}
}

func openStore(cfg *config.Config) (store.EntityStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreFile:
		return store.NewFileStore(cfg.DataDir)
	case config.StorePostgres:
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db), nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisStore(client, cfg.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
