package service

import (
	"context"
	"time"

	"shiftly/internal/domain"

	"go.uber.org/zap"
)

// ComplianceReport is the statutory day count for one worker/business pair in
// one calendar month.
type ComplianceReport struct {
	WorkerID   uint   `json:"worker_id"`
	BusinessID uint   `json:"business_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	DaysWorked int    `json:"days_worked"`
	Status     string `json:"status"`
}

// ComplianceService counts the distinct calendar days a worker worked for a
// business in a month. Read-only; it never mutates bookings or wallets.
type ComplianceService struct {
	log      *zap.Logger
	bookings BookingStore
}

func NewComplianceService(log *zap.Logger, bookings BookingStore) *ComplianceService {
	return &ComplianceService{log: log, bookings: bookings}
}

var countedStatuses = []string{
	domain.BookingStatusAccepted,
	domain.BookingStatusInProgress,
	domain.BookingStatusCompleted,
}

// DaysWorked counts distinct days in the given month on which any
// accepted-or-later booking's date range overlaps. A booking spanning month
// boundaries contributes only the days inside the month; overlapping bookings
// never double-count a day.
func (s *ComplianceService) DaysWorked(ctx context.Context, workerID, businessID uint, year int, month time.Month) (int, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	bookings, err := s.bookings.ListOverlapping(ctx, workerID, businessID, monthStart, monthEnd, countedStatuses)
	if err != nil {
		return 0, err
	}

	days := make(map[int]bool)
	for _, b := range bookings {
		from := b.StartDate.UTC()
		if from.Before(monthStart) {
			from = monthStart
		}
		to := b.EndDate.UTC()
		if !to.Before(monthEnd) {
			to = monthEnd.AddDate(0, 0, -1)
		}
		for d := dayOf(from); !d.After(dayOf(to)); d = d.AddDate(0, 0, 1) {
			days[d.Day()] = true
		}
	}
	return len(days), nil
}

// Check runs the day count and maps it to the statutory status.
func (s *ComplianceService) Check(ctx context.Context, workerID, businessID uint, year int, month time.Month) (*ComplianceReport, error) {
	days, err := s.DaysWorked(ctx, workerID, businessID, year, month)
	if err != nil {
		return nil, err
	}
	r := &ComplianceReport{
		WorkerID:   workerID,
		BusinessID: businessID,
		Year:       year,
		Month:      int(month),
		DaysWorked: days,
		Status:     domain.ComplianceStatusFor(days),
	}
	if r.Status != domain.ComplianceOK {
		s.log.Warn("worker near statutory day limit",
			zap.Uint("worker_id", workerID),
			zap.Uint("business_id", businessID),
			zap.Int("days_worked", days),
			zap.String("status", r.Status),
		)
	}
	return r, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
