package repository

import (
	"context"
	"errors"

	"shiftly/internal/models"

	"gorm.io/gorm"
)

// WalletRepository reads wallets. All balance mutation goes through the
// ledger writer; nothing here writes a balance.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreate returns the user's wallet, creating an empty active one on
// first use.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, Currency: "IDR", IsActive: true}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}
