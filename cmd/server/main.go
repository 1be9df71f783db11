package main

import (
	"context"
	"log"

	"restaurant-directory/internal/config"
	"restaurant-directory/internal/dashboard"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/server"
	"restaurant-directory/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	appLogger := logger.New(logger.ForEnv(cfg.IsDevelopment()))
	defer appLogger.Sync()
	logger.SetGlobal(appLogger)

	database.Init(cfg)

	ctx := context.Background()
	store, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		appLogger.Fatal("blob store could not be initialised", zap.Error(err))
	}

	var cache dashboard.Cache = dashboard.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisCache, err := dashboard.NewRedisCache(ctx, dashboard.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			appLogger.Warn("redis unavailable, keeping stats cache in process", zap.Error(err))
		} else {
			defer redisCache.Close()
			cache = redisCache
			appLogger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	app := server.New(cfg, server.Deps{
		Store: store,
		Stats: dashboard.NewService(cache),
	})
	if cfg.BlobBackend == "local" || cfg.BlobBackend == "" {
		app.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	appLogger.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
