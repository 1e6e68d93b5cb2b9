package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/middleware"
	"shiftly/internal/models"
	"shiftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BookingHandler struct {
	log      *zap.Logger
	bookings *service.BookingService
	holds    *service.HoldService
}

func NewBookingHandler(log *zap.Logger, bookings *service.BookingService, holds *service.HoldService) *BookingHandler {
	return &BookingHandler{log: log, bookings: bookings, holds: holds}
}

type createBookingRequest struct {
	WorkerID  uint      `json:"worker_id" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	RateCents int64     `json:"rate_cents" binding:"required,gt=0"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	businessID := middleware.GetUserID(c)
	b, err := h.bookings.Create(c.Request.Context(), businessID, req.WorkerID,
		req.Title, req.RateCents, req.StartDate, req.EndDate)
	switch {
	case errors.Is(err, service.ErrBookingDates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusNotFound, gin.H{"error": "worker not found"})
		return
	case err != nil:
		h.log.Error("booking creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create booking"})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Accept(c *gin.Context) {
	h.transition(c, h.bookings.Accept)
}

func (h *BookingHandler) Start(c *gin.Context) {
	h.transition(c, h.bookings.Start)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookings.CancelBeforeWork)
}

// Complete marks the booking done and opens its escrow hold.
func (h *BookingHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	businessID := middleware.GetUserID(c)
	b, err := h.bookings.Get(c.Request.Context(), businessID, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if b.BusinessID != businessID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the business may complete a booking"})
		return
	}
	hold, err := h.holds.OnBookingCompleted(c.Request.Context(), b.ID)
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient wallet balance to fund the job"})
		return
	case errors.Is(err, domain.ErrAlreadyApplied), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "booking cannot be completed from its current status"})
		return
	case err != nil:
		h.log.Error("booking completion failed", zap.Uint64("booking_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hold": hold})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// transition runs one actor-scoped status change and maps its errors.
func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, actorID, bookingID uint) (*models.Booking, error)) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	b, err := fn(c.Request.Context(), middleware.GetUserID(c), uint(id))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "booking cannot change to that status"})
		return
	case err != nil:
		h.log.Error("booking transition failed", zap.Uint64("booking_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking error"})
		return
	}
	c.JSON(http.StatusOK, b)
}
