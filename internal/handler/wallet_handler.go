package handler

import (
	"errors"
	"net/http"
	"strconv"

	"shiftly/internal/domain"
	"shiftly/internal/middleware"
	"shiftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WalletHandler struct {
	log     *zap.Logger
	wallets *service.WalletService
}

func NewWalletHandler(log *zap.Logger, wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{log: log, wallets: wallets}
}

// GetBalance returns the current user's wallet, creating it on first touch.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.wallets.Balance(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("wallet balance failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet_id":       w.ID,
		"available_cents": w.AvailableCents,
		"pending_cents":   w.PendingCents,
		"currency":        w.Currency,
	})
}

// ListEntries pages the current user's ledger history, newest first.
func (h *WalletHandler) ListEntries(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entries, err := h.wallets.Entries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			c.JSON(http.StatusOK, gin.H{"entries": []struct{}{}})
			return
		}
		h.log.Error("ledger entries failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Reconcile recomputes a wallet's balances from its entries. Admin only.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	walletID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet id"})
		return
	}
	report, err := h.wallets.Reconcile(c.Request.Context(), uint(walletID))
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		h.log.Error("reconcile failed", zap.Uint64("wallet_id", walletID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconcile error"})
		return
	}
	c.JSON(http.StatusOK, report)
}
