package handler

import (
	"errors"
	"net/http"
	"strconv"

	"shiftly/internal/domain"
	"shiftly/internal/middleware"
	"shiftly/internal/models"
	"shiftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PayoutHandler struct {
	log     *zap.Logger
	payouts *service.PayoutService
	banks   service.BankAccountStore
}

func NewPayoutHandler(log *zap.Logger, payouts *service.PayoutService, banks service.BankAccountStore) *PayoutHandler {
	return &PayoutHandler{log: log, payouts: payouts, banks: banks}
}

type payoutRequest struct {
	AmountCents   int64 `json:"amount_cents" binding:"required,gt=0"`
	BankAccountID uint  `json:"bank_account_id" binding:"required"`
}

// Create debits the worker's available balance and submits the disbursement.
func (h *PayoutHandler) Create(c *gin.Context) {
	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	workerID := middleware.GetUserID(c)
	p, err := h.payouts.Request(c.Request.Context(), workerID, req.AmountCents, req.BankAccountID)
	switch {
	case errors.Is(err, domain.ErrAmountBelowMinimum):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "amount below minimum payout"})
		return
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient available balance"})
		return
	case errors.Is(err, service.ErrBankAccountMismatch), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "bank account not found"})
		return
	case err != nil:
		h.log.Error("payout request failed", zap.Uint("worker_id", workerID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create payout"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PayoutHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	workerID := middleware.GetUserID(c)
	p, err := h.payouts.GetForWorker(c.Request.Context(), workerID, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout error"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PayoutHandler) List(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	payouts, err := h.payouts.ListForWorker(c.Request.Context(), workerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

type bankAccountRequest struct {
	BankCode      string `json:"bank_code" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	HolderName    string `json:"holder_name" binding:"required"`
}

func (h *PayoutHandler) AddBankAccount(c *gin.Context) {
	var req bankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &models.BankAccount{
		UserID:        middleware.GetUserID(c),
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		HolderName:    req.HolderName,
	}
	if err := h.banks.Create(c.Request.Context(), a); err != nil {
		h.log.Error("bank account creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save bank account"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *PayoutHandler) ListBankAccounts(c *gin.Context) {
	accounts, err := h.banks.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bank account error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_accounts": accounts})
}
