package handlers

import (
	"vibelingo_backend/internal/repository"
	"vibelingo_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB            *pgxpool.Pool
	AccountRepo   *repository.AccountRepository
	RewardRepo    *repository.RewardRepository
	RewardService *service.RewardService
}

func NewHandler(db *pgxpool.Pool, rewardService *service.RewardService) *Handler {
	return &Handler{
		DB:            db,
		AccountRepo:   repository.NewAccountRepository(db),
		RewardRepo:    repository.NewRewardRepository(db),
		RewardService: rewardService,
	}
}

// getAccountID извлекает account_id из контекста Gin
func getAccountID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	val, ok := c.Get("account_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
