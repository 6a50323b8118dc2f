package handlers

import (
	"errors"
	"net/http"

	"vibelingo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CompletePractice records one finished learning activity: vibe accrual,
// streak update and the automatic 30-day cycle check.
func (h *Handler) CompletePractice(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.RewardService.CompletePractice(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record practice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"vibe_earned": res.VibeEarned,
		"banked_vibe": res.BankedVibe,
		"streak_days": res.StreakDays,
		"cycle":       res.Cycle,
	})
}
