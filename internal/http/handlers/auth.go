package handlers

import (
	"errors"
	"net/http"

	"vibelingo_backend/internal/domain"
	"vibelingo_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type AuthRequest struct {
	ExternalID  string `json:"external_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

// Auth exchanges the identity subject from the hosted auth provider for
// a service JWT, creating the account on first sign-in.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()

	account, err := h.AccountRepo.GetByExternalID(ctx, req.ExternalID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		account = &domain.Account{
			ExternalID:  req.ExternalID,
			DisplayName: req.DisplayName,
		}
		if err := h.AccountRepo.Create(ctx, account); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
			return
		}
	}

	token, err := service.GenerateJWT(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"account": gin.H{
			"id":           account.ID,
			"external_id":  account.ExternalID,
			"display_name": account.DisplayName,
			"banked_vibe":  account.BankedVibe,
			"streak_days":  account.StreakDays,
		},
	})
}
