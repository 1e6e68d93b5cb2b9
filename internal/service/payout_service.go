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

var ErrBankAccountMismatch = errors.New("bank account does not belong to worker")

// PayoutCallback is the processor's payout update mapped onto our fields.
type PayoutCallback struct {
	ExternalID    string
	ProviderID    string
	Status        string
	FailureReason string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	FailedAt      *time.Time
}

// PayoutService drives a worker withdrawal. The gross amount is debited
// optimistically when the request is created; a terminal failed or cancelled
// status refunds the gross amount exactly once.
type PayoutService struct {
	cfg      *config.Config
	log      *zap.Logger
	writer   ledger.Writer
	payouts  PayoutStore
	wallets  WalletStore
	banks    BankAccountStore
	provider processor.Provider
}

func NewPayoutService(cfg *config.Config, log *zap.Logger, writer ledger.Writer, payouts PayoutStore, wallets WalletStore, banks BankAccountStore, provider processor.Provider) *PayoutService {
	return &PayoutService{
		cfg:      cfg,
		log:      log,
		writer:   writer,
		payouts:  payouts,
		wallets:  wallets,
		banks:    banks,
		provider: provider,
	}
}

// Request validates policy, debits the gross amount and creates the payout in
// one atomic unit, then submits the disbursement to the processor. A
// synchronous submission failure drives the same guarded failed transition a
// webhook would, refunding the debit.
func (s *PayoutService) Request(ctx context.Context, workerID uint, amountCents int64, bankAccountID uint) (*models.PayoutRequest, error) {
	if amountCents < s.cfg.Policy.MinPayoutCents {
		return nil, domain.ErrAmountBelowMinimum
	}
	bank, err := s.banks.GetByID(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}
	if bank.UserID != workerID {
		return nil, ErrBankAccountMismatch
	}
	w, err := s.wallets.GetOrCreate(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	fee, err := s.feeFor(ctx, workerID, amountCents)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &models.PayoutRequest{
		WorkerID:      workerID,
		WalletID:      w.ID,
		BankAccountID: bankAccountID,
		AmountCents:   amountCents,
		FeeCents:      fee,
		NetCents:      amountCents - fee,
		Status:        domain.PayoutStatusPending,
		ExternalID:    "out-" + uuid.NewString(),
		RequestedAt:   now,
	}
	_, err = s.writer.Apply(ctx, ledger.Request{
		Create: p,
		Ops: []ledger.Operation{{
			WalletID:   w.ID,
			Bucket:     domain.BucketAvailable,
			DeltaCents: -amountCents,
			Kind:       domain.EntryKindPayout,
			Reference:  p.ExternalID,
		}},
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("payout requested",
		zap.Uint("worker_id", workerID),
		zap.String("external_id", p.ExternalID),
		zap.Int64("gross_cents", amountCents),
		zap.Int64("fee_cents", fee),
	)

	d, err := s.provider.CreateDisbursement(ctx, processor.DisbursementRequest{
		ExternalID:    p.ExternalID,
		AmountCents:   p.NetCents,
		Currency:      w.Currency,
		BankCode:      bank.BankCode,
		AccountNumber: bank.AccountNumber,
		HolderName:    bank.HolderName,
		Description:   "Shiftly payout",
		CallbackURL:   s.callbackURL(),
	})
	if err != nil {
		s.log.Error("disbursement submission failed, refunding",
			zap.String("external_id", p.ExternalID), zap.Error(err))
		if _, ferr := s.fail(ctx, p, domain.PayoutStatusFailed, "disbursement submission failed"); ferr != nil && !errors.Is(ferr, domain.ErrAlreadyApplied) {
			s.log.Error("refund after failed submission did not apply",
				zap.String("external_id", p.ExternalID), zap.Error(ferr))
		}
		return nil, fmt.Errorf("submit disbursement: %w", err)
	}
	if err := s.payouts.SetProviderPayoutID(ctx, p.ID, d.ID); err != nil {
		return nil, err
	}
	p.ProviderPayoutID = d.ID
	return p, nil
}

// HandleCallback applies one processor payout update. Duplicate deliveries of
// a terminal status are no-ops: the refund is guarded by the same
// compare-and-swap as the status itself, so a second failed webhook can never
// refund twice.
func (s *PayoutService) HandleCallback(ctx context.Context, cb PayoutCallback) (*models.PayoutRequest, string, error) {
	p, err := s.payouts.GetByExternalID(ctx, cb.ExternalID)
	if err != nil {
		return nil, "", err
	}
	mapped := domain.MapProviderPayoutStatus(cb.Status)
	if mapped == domain.PayoutStatusPending {
		// Unknown provider vocabulary never drives a terminal transition.
		return p, CallbackIgnored, nil
	}
	if mapped == p.Status {
		return p, CallbackDuplicate, nil
	}

	var outcome string
	switch mapped {
	case domain.PayoutStatusProcessing:
		outcome, err = s.markProcessing(ctx, p, cb)
	case domain.PayoutStatusCompleted:
		outcome, err = s.complete(ctx, p, cb)
	case domain.PayoutStatusFailed, domain.PayoutStatusCancelled:
		outcome, err = s.failFromCallback(ctx, p, mapped, cb)
	}
	if err != nil {
		return nil, "", err
	}
	if outcome == CallbackApplied {
		p.Status = mapped
	}
	return p, outcome, nil
}

func (s *PayoutService) markProcessing(ctx context.Context, p *models.PayoutRequest, cb PayoutCallback) (string, error) {
	startedAt := time.Now()
	if cb.StartedAt != nil {
		startedAt = *cb.StartedAt
	}
	set := map[string]interface{}{"processed_at": startedAt}
	if cb.ProviderID != "" {
		set["provider_payout_id"] = cb.ProviderID
	}
	_, err := s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "payout_requests",
			ID:    p.ID,
			From:  []string{domain.PayoutStatusPending},
			To:    domain.PayoutStatusProcessing,
			Set:   set,
		},
	})
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return CallbackDuplicate, nil
	}
	if err != nil {
		return "", err
	}
	return CallbackApplied, nil
}

func (s *PayoutService) complete(ctx context.Context, p *models.PayoutRequest, cb PayoutCallback) (string, error) {
	completedAt := time.Now()
	if cb.CompletedAt != nil {
		completedAt = *cb.CompletedAt
	}
	_, err := s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "payout_requests",
			ID:    p.ID,
			From:  []string{domain.PayoutStatusPending, domain.PayoutStatusProcessing},
			To:    domain.PayoutStatusCompleted,
			Set:   map[string]interface{}{"completed_at": completedAt},
		},
	})
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return CallbackDuplicate, nil
	}
	if err != nil {
		return "", err
	}
	s.log.Info("payout completed",
		zap.String("external_id", p.ExternalID),
		zap.Int64("net_cents", p.NetCents),
	)
	return CallbackApplied, nil
}

func (s *PayoutService) failFromCallback(ctx context.Context, p *models.PayoutRequest, to string, cb PayoutCallback) (string, error) {
	reason := cb.FailureReason
	if reason == "" {
		reason = "payout " + to + " by processor"
	}
	_, err := s.fail(ctx, p, to, reason)
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return CallbackDuplicate, nil
	}
	if err != nil {
		return "", err
	}
	return CallbackApplied, nil
}

// fail drives the pending/processing -> failed|cancelled transition and
// refunds the full gross amount (the fee was never charged by the processor
// on a failed transfer). The refund rides on the status guard: whichever
// delivery wins the compare-and-swap applies it, every other one sees
// ErrAlreadyApplied.
func (s *PayoutService) fail(ctx context.Context, p *models.PayoutRequest, to, reason string) ([]models.LedgerEntry, error) {
	return s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "payout_requests",
			ID:    p.ID,
			From:  []string{domain.PayoutStatusPending, domain.PayoutStatusProcessing},
			To:    to,
			Set: map[string]interface{}{
				"failure_reason": reason,
				"failed_at":      time.Now(),
			},
		},
		Ops: []ledger.Operation{{
			WalletID:   p.WalletID,
			Bucket:     domain.BucketAvailable,
			DeltaCents: p.AmountCents,
			Kind:       domain.EntryKindRefund,
			Reference:  p.ExternalID,
		}},
	})
}

// feeFor computes the payout fee in integer basis points, rounded down,
// waived for the worker's first payout of the current ISO week when the free
// weekly payout policy is on.
func (s *PayoutService) feeFor(ctx context.Context, workerID uint, amountCents int64) (int64, error) {
	if s.cfg.Policy.FreeWeeklyPayout {
		n, err := s.payouts.CountChargeableSince(ctx, workerID, startOfWeek(time.Now()))
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
	}
	return amountCents * s.cfg.Policy.PayoutFeeBps / 10000, nil
}

func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday-based
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

func (s *PayoutService) GetForWorker(ctx context.Context, workerID, id uint) (*models.PayoutRequest, error) {
	p, err := s.payouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.WorkerID != workerID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *PayoutService) ListForWorker(ctx context.Context, workerID uint, limit, offset int) ([]models.PayoutRequest, error) {
	return s.payouts.ListByWorker(ctx, workerID, limit, offset)
}

func (s *PayoutService) callbackURL() string {
	if s.cfg.Processor.WebhookBaseURL == "" {
		return ""
	}
	return s.cfg.Processor.WebhookBaseURL + "/api/v1/webhooks/payout"
}
