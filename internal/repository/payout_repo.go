package repository

import (
	"context"
	"time"

	"shiftly/internal/domain"
	"shiftly/internal/models"

	"gorm.io/gorm"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetByExternalID(ctx context.Context, externalID string) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SetProviderPayoutID records the processor's id after the disbursement is
// submitted. Status transitions go through the ledger writer's guard.
func (r *PayoutRepository) SetProviderPayoutID(ctx context.Context, id uint, providerID string) error {
	return r.db.WithContext(ctx).Model(&models.PayoutRequest{}).
		Where("id = ?", id).
		Update("provider_payout_id", providerID).Error
}

func (r *PayoutRepository) ListByWorker(ctx context.Context, workerID uint, limit, offset int) ([]models.PayoutRequest, error) {
	var list []models.PayoutRequest
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// CountChargeableSince counts the worker's payout requests since the given
// time that were not refunded back (failed/cancelled requests never charged a
// fee, so they do not use up the free weekly payout).
func (r *PayoutRepository) CountChargeableSince(ctx context.Context, workerID uint, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PayoutRequest{}).
		Where("worker_id = ? AND requested_at >= ? AND status NOT IN ?",
			workerID, since, []string{domain.PayoutStatusFailed, domain.PayoutStatusCancelled}).
		Count(&n).Error
	return n, err
}
