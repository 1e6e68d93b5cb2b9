package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shiftly/config"
	"shiftly/internal/domain"
	"shiftly/internal/ledger"
	"shiftly/internal/models"
	"shiftly/pkg/processor"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Callback outcomes reported back to the webhook receiver.
const (
	CallbackApplied   = "applied"
	CallbackDuplicate = "duplicate"
	CallbackIgnored   = "ignored"
)

// PaymentCallback is the processor's payment update mapped onto our fields.
type PaymentCallback struct {
	ExternalID    string
	ProviderID    string
	Status        string
	FailureReason string
	PaymentTime   *time.Time
}

// PaymentService drives a top-up from creation through processor
// confirmation. The wallet is credited exactly once, on the pending->success
// transition.
type PaymentService struct {
	cfg      *config.Config
	log      *zap.Logger
	writer   ledger.Writer
	payments PaymentStore
	wallets  WalletStore
	provider processor.Provider
}

func NewPaymentService(cfg *config.Config, log *zap.Logger, writer ledger.Writer, payments PaymentStore, wallets WalletStore, provider processor.Provider) *PaymentService {
	return &PaymentService{
		cfg:      cfg,
		log:      log,
		writer:   writer,
		payments: payments,
		wallets:  wallets,
		provider: provider,
	}
}

// CreateIntent registers a pending funding attempt and submits an invoice to
// the processor. No balance changes until the success webhook arrives.
func (s *PaymentService) CreateIntent(ctx context.Context, businessID uint, amountCents int64) (*models.PaymentTransaction, error) {
	if amountCents < s.cfg.Policy.MinTopUpCents {
		return nil, domain.ErrAmountBelowMinimum
	}
	w, err := s.wallets.GetOrCreate(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	if !w.IsActive {
		return nil, domain.ErrWalletInactive
	}
	p := &models.PaymentTransaction{
		BusinessID:  businessID,
		WalletID:    w.ID,
		AmountCents: amountCents,
		Status:      domain.PaymentStatusPending,
		ExternalID:  "top-" + uuid.NewString(),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	inv, err := s.provider.CreateInvoice(ctx, processor.InvoiceRequest{
		ExternalID:  p.ExternalID,
		AmountCents: amountCents,
		Currency:    w.Currency,
		Description: "Shiftly wallet top-up",
		CallbackURL: s.callbackURL("/api/v1/webhooks/payment"),
	})
	if err != nil {
		s.log.Error("invoice submission failed",
			zap.String("external_id", p.ExternalID), zap.Error(err))
		return nil, fmt.Errorf("submit invoice: %w", err)
	}
	if err := s.payments.SetProviderPaymentID(ctx, p.ID, inv.ID); err != nil {
		return nil, err
	}
	p.ProviderPaymentID = inv.ID
	return p, nil
}

// HandleCallback applies one processor payment update. Safe to call any
// number of times for the same delivery: the credit is guarded by the
// pending->success compare-and-swap.
func (s *PaymentService) HandleCallback(ctx context.Context, cb PaymentCallback) (*models.PaymentTransaction, string, error) {
	p, err := s.payments.GetByExternalID(ctx, cb.ExternalID)
	if err != nil {
		return nil, "", err
	}
	mapped := domain.MapProviderPaymentStatus(cb.Status)
	if mapped == domain.PaymentStatusPending {
		// Unknown provider vocabulary never drives a terminal transition.
		return p, CallbackIgnored, nil
	}
	if mapped == p.Status {
		return p, CallbackDuplicate, nil
	}

	var ops []ledger.Operation
	set := map[string]interface{}{}
	switch mapped {
	case domain.PaymentStatusSuccess:
		paidAt := time.Now()
		if cb.PaymentTime != nil {
			paidAt = *cb.PaymentTime
		}
		set["paid_at"] = paidAt
		if cb.ProviderID != "" {
			set["provider_payment_id"] = cb.ProviderID
		}
		ops = append(ops, ledger.Operation{
			WalletID:   p.WalletID,
			Bucket:     domain.BucketAvailable,
			DeltaCents: p.AmountCents,
			Kind:       domain.EntryKindCredit,
			Reference:  p.ExternalID,
		})
	case domain.PaymentStatusFailed, domain.PaymentStatusExpired:
		// Funds were never held; no wallet mutation.
		if cb.FailureReason != "" {
			set["failure_reason"] = cb.FailureReason
		}
	}

	_, err = s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "payment_transactions",
			ID:    p.ID,
			From:  []string{domain.PaymentStatusPending},
			To:    mapped,
			Set:   set,
		},
		Ops: ops,
	})
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return p, CallbackDuplicate, nil
	}
	if err != nil {
		return nil, "", err
	}
	s.log.Info("payment transitioned",
		zap.String("external_id", p.ExternalID),
		zap.String("from", p.Status),
		zap.String("to", mapped),
		zap.Int64("amount_cents", p.AmountCents),
	)
	p.Status = mapped
	return p, CallbackApplied, nil
}

func (s *PaymentService) GetForBusiness(ctx context.Context, businessID, id uint) (*models.PaymentTransaction, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *PaymentService) callbackURL(path string) string {
	if s.cfg.Processor.WebhookBaseURL == "" {
		return ""
	}
	return s.cfg.Processor.WebhookBaseURL + path
}
