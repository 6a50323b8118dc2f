package config

import (
	"os"
	"strconv"

	"vibelingo_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	LogJSON     bool

	// Redis rate limiter (optional, fail-open when unset)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Token payout (ERC-20 via JSON-RPC). Any of these missing means
	// withdrawals are recorded as pending instead of being submitted.
	TokenRPCURL   string
	TokenContract string
	TokenTreasury string

	// Reward knobs
	VibePerLevel  int64
	ReconcileSpec string
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	// Начисление за один пройденный уровень (по умолчанию 50)
	vibePerLevel := int64(50)
	if v := os.Getenv("VIBE_PER_LEVEL"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			vibePerLevel = n
		}
	}

	reconcileSpec := os.Getenv("RECONCILE_CRON")
	if reconcileSpec == "" {
		reconcileSpec = "@every 1m"
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		TokenRPCURL:   os.Getenv("TOKEN_RPC_URL"),
		TokenContract: os.Getenv("TOKEN_CONTRACT_ADDRESS"),
		TokenTreasury: os.Getenv("TOKEN_TREASURY_ADDRESS"),
		VibePerLevel:  vibePerLevel,
		ReconcileSpec: reconcileSpec,
	}
}
