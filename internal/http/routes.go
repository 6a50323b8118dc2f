package http

import (
	"os"
	"strconv"
	"time"

	"vibelingo_backend/internal/http/handlers"
	"vibelingo_backend/internal/http/middleware"
	"vibelingo_backend/internal/service"
	"vibelingo_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rewardService *service.RewardService, version string) *ws.Hub {
	h := handlers.NewHandler(db, rewardService)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 30
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}

	// practice completions per account per window
	practiceRateLimit := 30
	if v := os.Getenv("PRACTICE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			practiceRateLimit = n
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	v1.POST("/auth", middleware.RedisRateLimit(authRateLimit, time.Minute), h.Auth)

	// Account
	v1.GET("/me", middleware.JWT(), h.Me)
	v1.POST("/wallet", middleware.JWT(), h.SetWallet)
	v1.DELETE("/wallet", middleware.JWT(), h.ClearWallet)

	// Practice
	v1.POST("/practice/complete", middleware.JWT(),
		middleware.PracticeRateLimit(practiceRateLimit, time.Minute), h.CompletePractice)

	// Rewards
	v1.GET("/rewards/multiplier", middleware.OptionalJWT(), h.MultiplierInfo)
	v1.POST("/rewards/withdraw", middleware.JWT(), h.Withdraw)
	v1.GET("/rewards", middleware.JWT(), h.RewardHistory)

	// Reward event stream for the avatar UI
	hub := ws.NewHub()
	r.GET("/ws", middleware.JWT(), h.WS(hub))

	return hub
}
