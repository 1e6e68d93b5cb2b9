package handler

import (
	"crypto/hmac"
	"errors"
	"net/http"
	"time"

	"shiftly/config"
	"shiftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WebhookHandler receives processor callbacks for payments and payouts. The
// processor retries on any non-2xx, so every path through here must be safe
// to replay.
type WebhookHandler struct {
	cfg      *config.Config
	log      *zap.Logger
	payments *service.PaymentService
	payouts  *service.PayoutService
}

func NewWebhookHandler(cfg *config.Config, log *zap.Logger, payments *service.PaymentService, payouts *service.PayoutService) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, log: log, payments: payments, payouts: payouts}
}

// paymentWebhook is the processor's invoice callback shape.
type paymentWebhook struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"external_id"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failure_reason"`
	PaidAt        *time.Time `json:"paid_at"`
}

// payoutWebhook is the processor's disbursement callback shape.
type payoutWebhook struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"external_id"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failure_reason"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	FailedAt      *time.Time `json:"failed_at"`
}

// authorize compares the shared callback token in constant time.
func (h *WebhookHandler) authorize(c *gin.Context) bool {
	token := c.GetHeader("X-Callback-Token")
	if token == "" || !hmac.Equal([]byte(token), []byte(h.cfg.Processor.CallbackToken)) {
		h.log.Warn("webhook rejected: bad callback token",
			zap.String("remote", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid callback token"})
		return false
	}
	return true
}

// HandlePayment processes an invoice status callback.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var payload paymentWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.ExternalID == "" || payload.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "external_id and status are required"})
		return
	}
	p, outcome, err := h.payments.HandleCallback(c.Request.Context(), service.PaymentCallback{
		ExternalID:    payload.ExternalID,
		ProviderID:    payload.ID,
		Status:        payload.Status,
		FailureReason: payload.FailureReason,
		PaymentTime:   payload.PaidAt,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown external_id"})
		return
	}
	if err != nil {
		h.log.Error("payment webhook failed",
			zap.String("external_id", payload.ExternalID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}
	h.log.Info("payment webhook",
		zap.String("external_id", payload.ExternalID),
		zap.String("provider_status", payload.Status),
		zap.String("outcome", outcome),
	)
	c.JSON(http.StatusOK, gin.H{
		"external_id": p.ExternalID,
		"status":      p.Status,
		"outcome":     outcome,
	})
}

// HandlePayout processes a disbursement status callback.
func (h *WebhookHandler) HandlePayout(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var payload payoutWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.ExternalID == "" || payload.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "external_id and status are required"})
		return
	}
	p, outcome, err := h.payouts.HandleCallback(c.Request.Context(), service.PayoutCallback{
		ExternalID:    payload.ExternalID,
		ProviderID:    payload.ID,
		Status:        payload.Status,
		FailureReason: payload.FailureReason,
		StartedAt:     payload.StartedAt,
		CompletedAt:   payload.CompletedAt,
		FailedAt:      payload.FailedAt,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown external_id"})
		return
	}
	if err != nil {
		h.log.Error("payout webhook failed",
			zap.String("external_id", payload.ExternalID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}
	h.log.Info("payout webhook",
		zap.String("external_id", payload.ExternalID),
		zap.String("provider_status", payload.Status),
		zap.String("outcome", outcome),
	)
	c.JSON(http.StatusOK, gin.H{
		"external_id": p.ExternalID,
		"status":      p.Status,
		"outcome":     outcome,
	})
}
