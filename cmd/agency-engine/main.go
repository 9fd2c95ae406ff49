package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlas-digital/agency-engine/internal/admin"
	"github.com/atlas-digital/agency-engine/internal/api"
	"github.com/atlas-digital/agency-engine/internal/cache"
	"github.com/atlas-digital/agency-engine/internal/calculator"
	"github.com/atlas-digital/agency-engine/internal/chat"
	"github.com/atlas-digital/agency-engine/internal/config"
	"github.com/atlas-digital/agency-engine/internal/notify"
	"github.com/atlas-digital/agency-engine/internal/seed"
	"github.com/atlas-digital/agency-engine/internal/storage"
	"github.com/atlas-digital/agency-engine/internal/submit"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting agency-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the pricing catalog on first boot
	if cfg.Database.SeedFile != "" {
		seeder, err := seed.Open(cfg.Database.DSN)
		if err != nil {
			slog.Error("failed to open seed connection", "error", err)
			os.Exit(1)
		}
		if err := seeder.Run(initCtx, cfg.Database.SeedFile); err != nil {
			slog.Error("failed to seed database", "error", err)
			seeder.Close()
			os.Exit(1)
		}
		seeder.Close()
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize configuration cache: Redis when configured, in-process
	// memory otherwise
	var tagCache cache.TagCache
	var redisCache *cache.RedisCache
	if cfg.Redis.Address != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		tagCache = redisCache
		slog.Info("redis cache connected", "address", cfg.Redis.Address)
	} else {
		tagCache = cache.NewMemoryCache()
		slog.Info("using in-process cache")
	}

	// Initialize lead notifier
	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		slog.Info("telegram notifications enabled")
	} else {
		slog.Warn("telegram notifications disabled, leads will not be dispatched")
	}

	// Initialize services
	calcService := calculator.NewService(repo, tagCache, cfg.Cache.ConfigTTL)
	adminService := admin.NewService(repo, tagCache)
	submitService := submit.NewService(repo, calcService, notifier)
	hub := chat.NewHub(repo, notifier, cfg.Chat.SessionTTL)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start chat session janitor
	hub.StartJanitor(ctx, cfg.Chat.JanitorInterval)

	// Setup HTTP server
	auth := api.NewAuth(cfg.Admin)
	server := api.NewServer(cfg.Server, repo, calcService, adminService, submitService, hub, auth)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Let in-flight lead notifications finish
	submitService.Wait()

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("agency-engine stopped")
}
