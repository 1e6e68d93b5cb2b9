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
	"gorm.io/gorm"
)

type PaymentHandler struct {
	log      *zap.Logger
	payments *service.PaymentService
}

func NewPaymentHandler(log *zap.Logger, payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{log: log, payments: payments}
}

type topUpRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

// CreateTopUp starts a wallet funding attempt for the authenticated business.
func (h *PaymentHandler) CreateTopUp(c *gin.Context) {
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	businessID := middleware.GetUserID(c)
	p, err := h.payments.CreateIntent(c.Request.Context(), businessID, req.AmountCents)
	switch {
	case errors.Is(err, domain.ErrAmountBelowMinimum):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "amount below minimum top-up"})
		return
	case errors.Is(err, domain.ErrWalletInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "wallet is inactive"})
		return
	case err != nil:
		h.log.Error("top-up creation failed", zap.Uint("business_id", businessID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create payment"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	businessID := middleware.GetUserID(c)
	p, err := h.payments.GetForBusiness(c.Request.Context(), businessID, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment error"})
		return
	}
	c.JSON(http.StatusOK, p)
}
