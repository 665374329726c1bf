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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/wayfinderhq/wayfinder/internal/adapters/amap"
	"github.com/wayfinderhq/wayfinder/internal/adapters/http"
	natsadapter "github.com/wayfinderhq/wayfinder/internal/adapters/nats"
	"github.com/wayfinderhq/wayfinder/internal/adapters/postgres"
	"github.com/wayfinderhq/wayfinder/internal/adapters/valkey"
	"github.com/wayfinderhq/wayfinder/internal/core/usecases"
	"github.com/wayfinderhq/wayfinder/internal/pkg/config"
	"github.com/wayfinderhq/wayfinder/internal/pkg/logging"
	"github.com/wayfinderhq/wayfinder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("wayfinder-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

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

	// Conversation state store
	state, err := valkey.New(cfg.Valkey.Addr, time.Duration(cfg.Valkey.StateTTL)*time.Second)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer state.Close()

	// NATS
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	// AMap
	amapClient := amap.New(cfg.AMap.Key, cfg.AMap.BaseURL,
		time.Duration(cfg.AMap.TimeoutSeconds)*time.Second)

	// Repos
	sessionRepo := postgres.NewSessionRepo(db)
	messageRepo := postgres.NewMessageRepo(db)

	// Use cases
	resolver := usecases.NewResolverService(amapClient, amapClient,
		time.Duration(cfg.AMap.StageTimeoutSeconds)*time.Second)
	conversations := usecases.NewConversationService(resolver, sessionRepo, messageRepo, state, pub)

	deps := &http.Dependencies{
		Conversations: conversations,
		Resolver:      resolver,
		NATS:          pub.RawConn(),
		DB:            db,
		State:         state,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Wayfinder API",
	})
	app.Use(recover.New())
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
