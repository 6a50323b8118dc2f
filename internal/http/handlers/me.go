package handlers

import (
	"net/http"

	"vibelingo_backend/internal/rewards"

	"github.com/gin-gonic/gin"
)

// Me returns the account snapshot the avatar screen renders: banked
// balance, streak, current multiplier and next-tier progress.
func (h *Handler) Me(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	ctx := c.Request.Context()
	account, err := h.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                        account.ID,
		"external_id":               account.ExternalID,
		"display_name":              account.DisplayName,
		"banked_vibe":               account.BankedVibe,
		"streak_days":               account.StreakDays,
		"wallet_address":            account.WalletAddress,
		"current_cycle_start":       account.CurrentCycleStart,
		"levels_completed_in_cycle": account.LevelsCompletedInCycle,
		"last_practice_date":        account.LastPracticeDate,
		"multiplier":                rewards.Multiplier(account.StreakDays),
		"next_tier":                 rewards.NextTierInfo(account.StreakDays),
	})
}
