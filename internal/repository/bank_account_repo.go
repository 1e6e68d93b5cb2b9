package repository

import (
	"context"

	"shiftly/internal/models"

	"gorm.io/gorm"
)

type BankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

func (r *BankAccountRepository) Create(ctx context.Context, a *models.BankAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *BankAccountRepository) GetByID(ctx context.Context, id uint) (*models.BankAccount, error) {
	var a models.BankAccount
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *BankAccountRepository) ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	var list []models.BankAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}
