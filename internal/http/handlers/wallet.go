package handlers

import (
	"net/http"

	"vibelingo_backend/internal/token"

	"github.com/gin-gonic/gin"
)

type SetWalletRequest struct {
	Address string `json:"address" binding:"required"`
}

// SetWallet links a payout address to the account. Pending rewards are
// picked up by the reconciler once an address exists.
func (h *Handler) SetWallet(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SetWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !token.ValidateAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	if err := h.AccountRepo.SetWalletAddress(c.Request.Context(), accountID, req.Address); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet_address": req.Address})
}

// ClearWallet unlinks the payout address. Future cycle closes record
// no_destination until a new address is set.
func (h *Handler) ClearWallet(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.AccountRepo.ClearWalletAddress(c.Request.Context(), accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unlink wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet_address": ""})
}
