// Command gameserver runs the Thornwall combat resolution server: it
// loads the static content catalog, connects to PostgreSQL for the
// command journal, and serves the JSON command API with a websocket
// event stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/greyhaven/thornwall/internal/config"
	"github.com/greyhaven/thornwall/internal/game/catalog"
	"github.com/greyhaven/thornwall/internal/game/combat"
	"github.com/greyhaven/thornwall/internal/gameserver"
	"github.com/greyhaven/thornwall/internal/observability"
	"github.com/greyhaven/thornwall/internal/server"
	"github.com/greyhaven/thornwall/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gameserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting gameserver",
		zap.String("config", *configPath),
		zap.String("addr", cfg.Server.Addr()),
	)

	registry := catalog.NewRegistry()
	if err := registry.LoadUnits(cfg.Content.UnitsDir); err != nil {
		return fmt.Errorf("loading unit definitions: %w", err)
	}
	if err := registry.LoadEnemies(cfg.Content.EnemiesDir); err != nil {
		return fmt.Errorf("loading enemy definitions: %w", err)
	}
	logger.Info("content catalog loaded",
		zap.Int("units", registry.UnitCount()),
		zap.Int("enemies", registry.EnemyCount()),
	)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	journal := postgres.NewJournalRepository(pool.DB())
	engine := combat.NewEngine(registry)
	hub := gameserver.NewHub(logger)
	manager := gameserver.NewMatchManager(engine, journal, hub, logger)
	handler := gameserver.NewHandler(manager, hub, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("http", &server.HTTPService{
		Server:          httpServer,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	healthDone := make(chan struct{})
	lifecycle.Add("db-health", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				case <-healthDone:
					return nil
				}
			}
		},
		StopFn: func() { close(healthDone) },
	})

	return lifecycle.Run(ctx)
}
