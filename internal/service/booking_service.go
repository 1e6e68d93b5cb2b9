package service

import (
	"context"
	"errors"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/models"

	"go.uber.org/zap"
)

var ErrBookingDates = errors.New("end date must not be before start date")

// BookingService covers the booking lifecycle up to completion; completion
// itself belongs to the hold service, which couples it to the escrow.
type BookingService struct {
	log      *zap.Logger
	bookings BookingStore
	users    UserStore
}

func NewBookingService(log *zap.Logger, bookings BookingStore, users UserStore) *BookingService {
	return &BookingService{log: log, bookings: bookings, users: users}
}

func (s *BookingService) Create(ctx context.Context, businessID, workerID uint, title string, rateCents int64, startDate, endDate time.Time) (*models.Booking, error) {
	if endDate.Before(startDate) {
		return nil, ErrBookingDates
	}
	worker, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.IsWorker() {
		return nil, domain.ErrInvalidTransition
	}
	b := &models.Booking{
		BusinessID: businessID,
		WorkerID:   workerID,
		Title:      title,
		RateCents:  rateCents,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     domain.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("booking created",
		zap.Uint("booking_id", b.ID),
		zap.Uint("business_id", businessID),
		zap.Uint("worker_id", workerID),
		zap.Int64("rate_cents", rateCents),
	)
	return b, nil
}

// Accept is the worker taking the job. pending -> accepted only.
func (s *BookingService) Accept(ctx context.Context, workerID, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.WorkerID != workerID {
		return nil, domain.ErrInvalidTransition
	}
	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID,
		[]string{domain.BookingStatusPending}, domain.BookingStatusAccepted,
		map[string]interface{}{"accepted_at": time.Now()})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// Start moves an accepted booking in progress.
func (s *BookingService) Start(ctx context.Context, workerID, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.WorkerID != workerID {
		return nil, domain.ErrInvalidTransition
	}
	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID,
		[]string{domain.BookingStatusAccepted}, domain.BookingStatusInProgress, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// CancelBeforeWork cancels a booking that has not been completed. Cancelling a
// completed booking goes through the hold's dispute path instead.
func (s *BookingService) CancelBeforeWork(ctx context.Context, actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.BusinessID && actorID != b.WorkerID {
		return nil, domain.ErrInvalidTransition
	}
	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID,
		[]string{domain.BookingStatusPending, domain.BookingStatusAccepted, domain.BookingStatusInProgress},
		domain.BookingStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) Get(ctx context.Context, actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.BusinessID && actorID != b.WorkerID {
		return nil, domain.ErrInvalidTransition
	}
	return b, nil
}
