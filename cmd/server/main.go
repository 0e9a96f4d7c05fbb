// Entry point package
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rayyan-app/rayyan-server/internal/config"
	"github.com/rayyan-app/rayyan-server/internal/database"
	"github.com/rayyan-app/rayyan-server/internal/handler"
	"github.com/rayyan-app/rayyan-server/internal/logger"
	"github.com/rayyan-app/rayyan-server/internal/middleware"
	"github.com/rayyan-app/rayyan-server/internal/queue"
	"github.com/rayyan-app/rayyan-server/internal/repository"
	"github.com/rayyan-app/rayyan-server/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	zl := logger.New(cfg.Env)
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis is optional; without it caching and rate limiting degrade
	// to pass-through.
	rdb := config.NewRedisClient()
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	otpLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOtpRepo(db)
	resets := repository.NewResetRepo(db)
	buckets := repository.NewBucketRepo(db)
	fasts := repository.NewFastRepo(db)
	circles := repository.NewCircleRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, otps, resets, fasts)
	bucketH := handler.NewBucketHandler(buckets)
	fastH := handler.NewFastHandler(fasts, buckets)
	circleH := handler.NewCircleHandler(circles, buckets, fasts)
	homeH := handler.NewHomeHandler(users, fasts, buckets, circles)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(zl))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret, otpLimiter)
	router.RegisterAPI(e, cfg.JWTSecret, cache, bucketH, fastH, circleH, homeH)

	// Outbound mail worker; reconnects on its own.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			zl.Error("mail consumer stopped", zap.Error(err))
		}
	}()

	// Expired one-time codes are dead weight; sweep them hourly.
	go func() {
		for range time.Tick(time.Hour) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := otps.DeleteExpired(ctx); err != nil {
				zl.Warn("otp sweep failed", zap.Error(err))
			} else if n > 0 {
				zl.Info("otp sweep", zap.Int64("deleted", n))
			}
			cancel()
		}
	}()

	addr := ":" + cfg.Port
	zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
