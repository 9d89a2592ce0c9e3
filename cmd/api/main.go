package main

import (
	"fmt"
	"log"
	"net/http"

	"payshare-notifier/config"
	"payshare-notifier/internal/handler"
	"payshare-notifier/internal/middleware"
	"payshare-notifier/internal/redis"
	"payshare-notifier/internal/repository"
	"payshare-notifier/pkg/database"
	"payshare-notifier/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	defer l.Logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	subRepo := repository.NewPushSubscriptionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	subHandler := handler.NewSubscriptionHandler(subRepo, cfg.VAPIDPublicKey)
	prefHandler := handler.NewPreferenceHandler(prefRepo)

	gin.SetMode(cfg.AppMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.GET("/push/vapid-key", subHandler.VAPIDKey)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	authed.GET("/workspaces/:id/preferences/me", prefHandler.GetMine)

	writes := authed.Group("")
	writes.Use(middleware.SubscriptionRateLimitMiddleware(limiter))
	writes.POST("/push/subscriptions", subHandler.Register)
	writes.DELETE("/push/subscriptions", subHandler.Unsubscribe)

	log.Printf("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
