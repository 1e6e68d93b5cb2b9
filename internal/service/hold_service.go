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

	"go.uber.org/zap"
)

// HoldService runs the escrow around a completed booking. Completing the
// booking earmarks the job amount out of the business wallet into the worker's
// pending balance; after the review window it becomes available, and a sweep
// closes it out after the settlement lag. Every transition is a guarded
// compare-and-swap, so concurrent triggers settle to exactly one mutation.
type HoldService struct {
	cfg      *config.Config
	log      *zap.Logger
	writer   ledger.Writer
	holds    HoldStore
	bookings BookingStore
	wallets  WalletStore
}

func NewHoldService(cfg *config.Config, log *zap.Logger, writer ledger.Writer, holds HoldStore, bookings BookingStore, wallets WalletStore) *HoldService {
	return &HoldService{
		cfg:      cfg,
		log:      log,
		writer:   writer,
		holds:    holds,
		bookings: bookings,
		wallets:  wallets,
	}
}

// OnBookingCompleted marks the booking complete and creates its escrow hold in
// one atomic unit: the booking's compare-and-swap guards the whole thing, so a
// double completion never double-charges the business. Returns the hold, new
// or existing.
func (s *HoldService) OnBookingCompleted(ctx context.Context, bookingID uint) (*models.HoldRecord, error) {
	if existing, err := s.holds.GetByBookingID(ctx, bookingID); err == nil {
		return existing, nil
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	bw, err := s.wallets.GetOrCreate(ctx, b.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("business wallet: %w", err)
	}
	ww, err := s.wallets.GetOrCreate(ctx, b.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("worker wallet: %w", err)
	}

	now := time.Now()
	h := &models.HoldRecord{
		BookingID:    b.ID,
		WorkerID:     b.WorkerID,
		BusinessID:   b.BusinessID,
		AmountCents:  b.RateCents,
		Status:       domain.HoldStatusPendingReview,
		ReviewEndsAt: now.Add(s.cfg.Policy.ReviewWindow),
	}
	_, err = s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "bookings",
			ID:    b.ID,
			From:  []string{domain.BookingStatusAccepted, domain.BookingStatusInProgress},
			To:    domain.BookingStatusCompleted,
			Set:   map[string]interface{}{"completed_at": now},
		},
		Create: h,
		Ops: []ledger.Operation{
			{
				WalletID:   bw.ID,
				Bucket:     domain.BucketAvailable,
				DeltaCents: -b.RateCents,
				Kind:       domain.EntryKindHold,
				Reference:  h.Reference(),
			},
			{
				WalletID:   ww.ID,
				Bucket:     domain.BucketPending,
				DeltaCents: b.RateCents,
				Kind:       domain.EntryKindEarn,
				Reference:  h.Reference(),
			},
		},
	})
	if errors.Is(err, domain.ErrAlreadyApplied) {
		// Lost the race; the winner created the hold.
		return s.holds.GetByBookingID(ctx, bookingID)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("hold created",
		zap.Uint("booking_id", b.ID),
		zap.Int64("amount_cents", b.RateCents),
		zap.Time("review_ends_at", h.ReviewEndsAt),
	)
	return h, nil
}

// OnReviewWindowElapsed moves an undisputed hold's funds from the worker's
// pending to available balance. A no-op before the window ends or once the
// hold has left pending_review.
func (s *HoldService) OnReviewWindowElapsed(ctx context.Context, holdID uint) (*models.HoldRecord, error) {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if h.Status != domain.HoldStatusPendingReview || time.Now().Before(h.ReviewEndsAt) {
		return h, nil
	}
	if err := s.release(ctx, h, domain.HoldStatusPendingReview); err != nil && !errors.Is(err, domain.ErrAlreadyApplied) {
		return nil, err
	}
	return s.holds.GetByID(ctx, holdID)
}

// OpenDispute freezes a hold under review. Only the booking's business or
// worker may open it, and only while the hold is still pending_review.
func (s *HoldService) OpenDispute(ctx context.Context, holdID, byUserID uint, reason string) (*models.HoldRecord, error) {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if byUserID != h.BusinessID && byUserID != h.WorkerID {
		return nil, domain.ErrInvalidTransition
	}
	_, err = s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "hold_records",
			ID:    h.ID,
			From:  []string{domain.HoldStatusPendingReview},
			To:    domain.HoldStatusDisputed,
			Set: map[string]interface{}{
				"dispute_reason": reason,
				"disputed_by":    byUserID,
			},
		},
	})
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return nil, domain.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("dispute opened",
		zap.Uint("hold_id", h.ID),
		zap.Uint("by", byUserID),
	)
	return s.holds.GetByID(ctx, holdID)
}

// Resolve settles a disputed hold. ResolutionRelease hands the funds to the
// worker as if the review had passed; ResolutionCancel returns them to the
// business.
func (s *HoldService) Resolve(ctx context.Context, holdID uint, outcome string) (*models.HoldRecord, error) {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case domain.ResolutionRelease:
		err = s.release(ctx, h, domain.HoldStatusDisputed)
	case domain.ResolutionCancel:
		err = s.reverse(ctx, h, []string{domain.HoldStatusDisputed}, domain.BucketPending)
	default:
		return nil, fmt.Errorf("unknown resolution %q", outcome)
	}
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return nil, domain.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("dispute resolved",
		zap.Uint("hold_id", h.ID),
		zap.String("outcome", outcome),
	)
	return s.holds.GetByID(ctx, holdID)
}

// Cancel unwinds a non-terminal hold back to the business. The reversal
// debits whichever worker bucket currently carries the funds; a worker who
// has already withdrawn a released amount is protected by the insufficient
// funds check.
func (s *HoldService) Cancel(ctx context.Context, holdID uint) (*models.HoldRecord, error) {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	var bucket string
	switch h.Status {
	case domain.HoldStatusPendingReview, domain.HoldStatusDisputed:
		bucket = domain.BucketPending
	case domain.HoldStatusAvailable:
		bucket = domain.BucketAvailable
	default:
		return nil, domain.ErrInvalidTransition
	}
	err = s.reverse(ctx, h, []string{h.Status}, bucket)
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return nil, domain.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return s.holds.GetByID(ctx, holdID)
}

// Sweep is the periodic pass: releases holds whose review window has elapsed
// and closes released-and-settled holds. Returns how many of each it applied.
func (s *HoldService) Sweep(ctx context.Context, now time.Time) (released, closed int, err error) {
	due, err := s.holds.ListDueForRelease(ctx, now, 200)
	if err != nil {
		return 0, 0, err
	}
	for i := range due {
		rerr := s.release(ctx, &due[i], domain.HoldStatusPendingReview)
		if errors.Is(rerr, domain.ErrAlreadyApplied) {
			continue
		}
		if rerr != nil {
			s.log.Error("sweep release failed",
				zap.Uint("hold_id", due[i].ID), zap.Error(rerr))
			continue
		}
		released++
	}

	settled, err := s.holds.ListDueForClose(ctx, now.Add(-s.cfg.Policy.SettlementLag), 200)
	if err != nil {
		return released, 0, err
	}
	for i := range settled {
		_, cerr := s.writer.Apply(ctx, ledger.Request{
			Guard: &ledger.Guard{
				Table: "hold_records",
				ID:    settled[i].ID,
				From:  []string{domain.HoldStatusAvailable},
				To:    domain.HoldStatusReleased,
			},
		})
		if errors.Is(cerr, domain.ErrAlreadyApplied) {
			continue
		}
		if cerr != nil {
			s.log.Error("sweep close failed",
				zap.Uint("hold_id", settled[i].ID), zap.Error(cerr))
			continue
		}
		closed++
	}
	if released > 0 || closed > 0 {
		s.log.Info("hold sweep",
			zap.Int("released", released),
			zap.Int("closed", closed),
		)
	}
	return released, closed, nil
}

func (s *HoldService) GetForUser(ctx context.Context, userID, holdID uint) (*models.HoldRecord, error) {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if userID != h.BusinessID && userID != h.WorkerID {
		return nil, domain.ErrInvalidTransition
	}
	return h, nil
}

// release moves the hold amount from the worker's pending to available
// balance under the from->available compare-and-swap.
func (s *HoldService) release(ctx context.Context, h *models.HoldRecord, from string) error {
	ww, err := s.wallets.GetByUserID(ctx, h.WorkerID)
	if err != nil {
		return fmt.Errorf("worker wallet: %w", err)
	}
	now := time.Now()
	set := map[string]interface{}{"released_at": now}
	if from == domain.HoldStatusDisputed {
		set["resolved_at"] = now
	}
	_, err = s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "hold_records",
			ID:    h.ID,
			From:  []string{from},
			To:    domain.HoldStatusAvailable,
			Set:   set,
		},
		Ops: []ledger.Operation{
			{
				WalletID:   ww.ID,
				Bucket:     domain.BucketPending,
				DeltaCents: -h.AmountCents,
				Kind:       domain.EntryKindRelease,
				Reference:  h.Reference(),
			},
			{
				WalletID:   ww.ID,
				Bucket:     domain.BucketAvailable,
				DeltaCents: h.AmountCents,
				Kind:       domain.EntryKindRelease,
				Reference:  h.Reference(),
			},
		},
	})
	return err
}

// reverse returns the hold amount from the given worker bucket to the
// business's available balance and cancels the hold.
func (s *HoldService) reverse(ctx context.Context, h *models.HoldRecord, from []string, bucket string) error {
	ww, err := s.wallets.GetByUserID(ctx, h.WorkerID)
	if err != nil {
		return fmt.Errorf("worker wallet: %w", err)
	}
	bw, err := s.wallets.GetByUserID(ctx, h.BusinessID)
	if err != nil {
		return fmt.Errorf("business wallet: %w", err)
	}
	_, err = s.writer.Apply(ctx, ledger.Request{
		Guard: &ledger.Guard{
			Table: "hold_records",
			ID:    h.ID,
			From:  from,
			To:    domain.HoldStatusCancelled,
			Set:   map[string]interface{}{"resolved_at": time.Now()},
		},
		Ops: []ledger.Operation{
			{
				WalletID:   ww.ID,
				Bucket:     bucket,
				DeltaCents: -h.AmountCents,
				Kind:       domain.EntryKindRefund,
				Reference:  h.Reference(),
			},
			{
				WalletID:   bw.ID,
				Bucket:     domain.BucketAvailable,
				DeltaCents: h.AmountCents,
				Kind:       domain.EntryKindRefund,
				Reference:  h.Reference(),
			},
		},
	})
	return err
}
