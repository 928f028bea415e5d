package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/app"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/cache"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/config"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/logger"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/server"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/match"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/ratelimit"
)

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	limiter := ratelimit.NewService(appCtx, ratelimit.DefaultPolicies())
	matcher := match.NewService(appCtx)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// periodic sweep of expired action events
	go limiter.RunCleanup(ctx, cfg.Cleanup.Interval)

	fiberApp := server.New(appCtx, limiter, matcher)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = fiberApp.Shutdown()
	}()

	if err := fiberApp.Listen(addr); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
