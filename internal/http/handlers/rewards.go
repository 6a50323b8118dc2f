package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vibelingo_backend/internal/rewards"
	"vibelingo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Withdraw closes the current cycle manually and pays out the banked
// balance scaled by the streak multiplier.
func (h *Handler) Withdraw(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.RewardService.Withdraw(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, service.ErrNothingToWithdraw):
			c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to withdraw"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to withdraw"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"multiplier":    res.Multiplier,
		"banked_amount": res.BankedAmount,
		"payout_amount": res.PayoutAmount,
		"reward":        res.Reward,
	})
}

// RewardHistory returns past withdrawals and cycle completions, newest
// cycle first.
func (h *Handler) RewardHistory(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	history, err := h.RewardService.History(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": history})
}

// MultiplierInfo is public display data: the full tier table plus the
// caller's position in it when authenticated.
func (h *Handler) MultiplierInfo(c *gin.Context) {
	resp := gin.H{"tiers": rewards.Tiers()}

	if accountID, ok := getAccountID(c); ok {
		if account, err := h.AccountRepo.GetByID(c.Request.Context(), accountID); err == nil {
			resp["streak_days"] = account.StreakDays
			resp["multiplier"] = rewards.Multiplier(account.StreakDays)
			resp["next_tier"] = rewards.NextTierInfo(account.StreakDays)
		}
	}

	c.JSON(http.StatusOK, resp)
}
