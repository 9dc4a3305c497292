package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/etxarri/terragrid/internal/adapters/http"
	"github.com/etxarri/terragrid/internal/adapters/landmask"
	natsadapter "github.com/etxarri/terragrid/internal/adapters/nats"
	"github.com/etxarri/terragrid/internal/adapters/postgres"
	"github.com/etxarri/terragrid/internal/adapters/valkey"
	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/lod"
	"github.com/etxarri/terragrid/internal/core/ports"
	"github.com/etxarri/terragrid/internal/core/usecases"
	"github.com/etxarri/terragrid/internal/pkg/config"
	"github.com/etxarri/terragrid/internal/pkg/logging"
	"github.com/etxarri/terragrid/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("terragrid-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("terragrid-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. A typed nil through the CacheService interface would defeat
	// the nil checks downstream, so keep the variable unset on failure.
	var cache *valkey.Cache
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cache = c
		defer cache.Close()
	}

	// NATS
	var pub *natsadapter.Publisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		pub = p
		defer pub.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var events ports.EventPublisher
	if pub != nil {
		events = pub
	}

	// Land mask, tiling core, persistence
	mask := landmask.New()
	gridSvc := usecases.NewGridService(mask, cacheSvc)
	cellSvc := usecases.NewCellService(cacheSvc)
	tileRepo := postgres.NewTileRepo(db)
	lodCtrl := lod.NewController()

	deps := &http.Dependencies{
		Cells:    cellSvc,
		Grid:     gridSvc,
		Tiles:    tileRepo,
		LOD:      lodCtrl,
		Events:   events,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
		MaxTiles: cfg.Grid.MaxTiles,
	}

	// Invalidate cached stats and viewports when a grid rebuild lands.
	if cache != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeGridRebuilt(ctx, func(ctx context.Context, snapshot *domain.GridSnapshot) error {
				slog.Info("grid rebuilt, invalidating caches", "snapshot", snapshot.ID, "tile_size", snapshot.TileSize)
				return cache.DeleteMany(ctx,
					fmt.Sprintf("grid:stats:%g", snapshot.TileSize),
					"grid:snapshots:latest",
				)
			})
			if err != nil {
				slog.Warn("grid rebuild subscription failed", "error", err)
			}
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "TerraGrid API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
