package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/artgrid/gallery-proxy/internal/config"
	"github.com/artgrid/gallery-proxy/pkg/cache"
	"github.com/artgrid/gallery-proxy/pkg/gallery"
	"github.com/artgrid/gallery-proxy/pkg/logging"
	"github.com/artgrid/gallery-proxy/pkg/normalize"
	"github.com/artgrid/gallery-proxy/pkg/provider"
	"github.com/artgrid/gallery-proxy/pkg/ratelimit"
	"github.com/artgrid/gallery-proxy/pkg/server"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := logging.Setup(logging.DefaultConfig())
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis_url", cfg.RedisURL).Msg("Connected to Redis")

	quota := ratelimit.NewTracker(redisClient, logging.NewLogger("quota"))

	providerClient, err := provider.New(provider.Config{
		Key:     cfg.ProviderKey,
		Secret:  cfg.ProviderSecret,
		Account: cfg.ProviderAccount,
		BaseURL: cfg.ProviderBaseURL,
	}, quota)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create provider client")
	}

	store := cache.NewStore(redisClient)
	normalizer := normalize.New(providerClient, cfg.NormalizeMode)

	controller := gallery.NewController(store, providerClient, normalizer, gallery.Config{
		Folder:   cfg.SourceFolder,
		StateKey: cfg.StateKey,
		PageSize: cfg.PageSize,
		Shuffle:  cfg.Shuffle,
	})

	handler := server.NewGalleryHandler(controller)
	e := server.New(server.Config{
		APISecret: cfg.APISecret,
		DevMode:   cfg.DevMode,
	}, handler)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().
			Str("addr", addr).
			Str("folder", cfg.SourceFolder).
			Bool("dev_mode", cfg.DevMode).
			Msg("Starting gallery proxy")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close Redis client")
	}
	logger.Info().Msg("Shutdown complete")
}
