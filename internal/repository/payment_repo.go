package repository

import (
	"context"

	"shiftly/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	var p models.PaymentTransaction
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error) {
	var p models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SetProviderPaymentID records the processor's id after the invoice is
// created. Status fields are never written here; transitions go through the
// ledger writer's guard.
func (r *PaymentRepository) SetProviderPaymentID(ctx context.Context, id uint, providerID string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("id = ?", id).
		Update("provider_payment_id", providerID).Error
}

func (r *PaymentRepository) ListByBusiness(ctx context.Context, businessID uint, limit, offset int) ([]models.PaymentTransaction, error) {
	var list []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
