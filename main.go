package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-charging/auth"
	"fleet-charging/cache"
	"fleet-charging/config"
	"fleet-charging/database"
	"fleet-charging/fleet"
	"fleet-charging/handlers"
	"fleet-charging/logging"
	"fleet-charging/telemetry"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger := logging.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis-backed analytics cache
	cacheClient, err := cache.NewCache(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cacheClient.Close()
	logger.Info("Redis connected successfully")

	// Initialize fleet engine
	engine := fleet.NewEngine(db, fleet.NewRandomRate(), logger,
		fleet.WithThresholds(cfg.LowBatteryThreshold, cfg.AssumedEfficiency))

	// Initialize auth
	authService := auth.NewService(db.UserRepo, cfg.JWTSecret, cfg.TokenLifetime)

	// Initialize MQTT battery feed (optional)
	if cfg.MQTTEnabled {
		telemetryClient, err := telemetry.NewClient(cfg, db, logger)
		if err != nil {
			log.Fatalf("Failed to initialize telemetry client: %v", err)
		}
		defer telemetryClient.Disconnect()
	} else {
		logger.Info("MQTT battery feed disabled")
	}

	// Setup HTTP router
	e := handlers.NewRouter(db, engine, cacheClient, authService, logger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
