package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/middleware"
	"shiftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HoldHandler struct {
	log   *zap.Logger
	holds *service.HoldService
}

func NewHoldHandler(log *zap.Logger, holds *service.HoldService) *HoldHandler {
	return &HoldHandler{log: log, holds: holds}
}

func (h *HoldHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hold id"})
		return
	}
	hold, err := h.holds.GetForUser(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hold not found"})
		return
	}
	c.JSON(http.StatusOK, hold)
}

type disputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Dispute freezes a hold that is still under review.
func (h *HoldHandler) Dispute(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hold id"})
		return
	}
	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hold, err := h.holds.OpenDispute(c.Request.Context(), uint(id), middleware.GetUserID(c), req.Reason)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hold not found"})
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "hold is no longer disputable"})
		return
	case err != nil:
		h.log.Error("dispute failed", zap.Uint64("hold_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispute error"})
		return
	}
	c.JSON(http.StatusOK, hold)
}

type resolveRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=release cancel"`
}

// Resolve settles a disputed hold. Admin only.
func (h *HoldHandler) Resolve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hold id"})
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hold, err := h.holds.Resolve(c.Request.Context(), uint(id), req.Outcome)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hold not found"})
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "hold is not disputed"})
		return
	case err != nil:
		h.log.Error("resolve failed", zap.Uint64("hold_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve error"})
		return
	}
	c.JSON(http.StatusOK, hold)
}

// Cancel unwinds a non-terminal hold back to the business. Admin only.
func (h *HoldHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hold id"})
		return
	}
	hold, err := h.holds.Cancel(c.Request.Context(), uint(id))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hold not found"})
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "hold can no longer be cancelled"})
		return
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "worker balance cannot cover the reversal"})
		return
	case err != nil:
		h.log.Error("cancel failed", zap.Uint64("hold_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel error"})
		return
	}
	c.JSON(http.StatusOK, hold)
}

// Sweep releases review-elapsed holds and closes settled ones. Admin only;
// safe to trigger concurrently with itself.
func (h *HoldHandler) Sweep(c *gin.Context) {
	released, closed, err := h.holds.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		h.log.Error("sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released, "closed": closed})
}
