package repository

import (
	"context"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/models"

	"gorm.io/gorm"
)

type HoldRepository struct {
	db *gorm.DB
}

func NewHoldRepository(db *gorm.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

func (r *HoldRepository) GetByID(ctx context.Context, id uint) (*models.HoldRecord, error) {
	var h models.HoldRecord
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HoldRepository) GetByBookingID(ctx context.Context, bookingID uint) (*models.HoldRecord, error) {
	var h models.HoldRecord
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// ListDueForRelease returns holds whose review window has elapsed without a
// dispute, oldest first.
func (r *HoldRepository) ListDueForRelease(ctx context.Context, now time.Time, limit int) ([]models.HoldRecord, error) {
	var list []models.HoldRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND review_ends_at <= ?", domain.HoldStatusPendingReview, now).
		Order("review_ends_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListDueForClose returns released-to-available holds past the settlement
// lag, ready to be closed as released.
func (r *HoldRepository) ListDueForClose(ctx context.Context, before time.Time, limit int) ([]models.HoldRecord, error) {
	var list []models.HoldRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND released_at <= ?", domain.HoldStatusAvailable, before).
		Order("released_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *HoldRepository) ListByWorker(ctx context.Context, workerID uint, limit, offset int) ([]models.HoldRecord, error) {
	var list []models.HoldRecord
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
