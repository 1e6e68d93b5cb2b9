package handler

import (
	"net/http"
	"strconv"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/middleware"
	"shiftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ComplianceHandler struct {
	log        *zap.Logger
	compliance *service.ComplianceService
}

func NewComplianceHandler(log *zap.Logger, compliance *service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{log: log, compliance: compliance}
}

// Check reports the statutory day count for one worker in a month. A business
// checks its own pair; an admin may pass business_id explicitly.
func (h *ComplianceHandler) Check(c *gin.Context) {
	workerID, err := strconv.ParseUint(c.Param("worker_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid worker id"})
		return
	}
	now := time.Now().UTC()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}

	businessID := middleware.GetUserID(c)
	if middleware.GetRole(c) == domain.RoleAdmin {
		b, err := strconv.ParseUint(c.Query("business_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "business_id is required"})
			return
		}
		businessID = uint(b)
	}

	report, err := h.compliance.Check(c.Request.Context(), uint(workerID), businessID, year, time.Month(month))
	if err != nil {
		h.log.Error("compliance check failed",
			zap.Uint64("worker_id", workerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compliance error"})
		return
	}
	c.JSON(http.StatusOK, report)
}
