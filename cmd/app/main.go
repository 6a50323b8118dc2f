package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibelingo_backend/internal/config"
	"vibelingo_backend/internal/db"
	httpServer "vibelingo_backend/internal/http"
	"vibelingo_backend/internal/http/middleware"
	"vibelingo_backend/internal/jobs"
	"vibelingo_backend/internal/logger"
	"vibelingo_backend/internal/service"
	"vibelingo_backend/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), cfg.LogJSON)
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	transfer := token.NewClient(cfg.TokenRPCURL, cfg.TokenContract, cfg.TokenTreasury)
	if !transfer.Configured() {
		logger.Warn("token transfer not configured, withdrawals will be recorded as pending")
	}

	rewardService := service.NewRewardService(dbPool, transfer, cfg.VibePerLevel)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	hub := httpServer.RegisterRoutes(r, dbPool, rewardService, version)
	rewardService.SetNotifier(hub)

	reconciler := jobs.NewReconciler(dbPool, transfer)
	if err := reconciler.Start(cfg.ReconcileSpec); err != nil {
		logger.Fatal("failed to start reconciler", "error", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	reconciler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
