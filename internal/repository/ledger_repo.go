package repository

import (
	"context"

	"shiftly/internal/models"

	"gorm.io/gorm"
)

// LedgerEntryRepository reads the append-only entry log.
type LedgerEntryRepository struct {
	db *gorm.DB
}

func NewLedgerEntryRepository(db *gorm.DB) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: db}
}

func (r *LedgerEntryRepository) ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *LedgerEntryRepository) ListByReference(ctx context.Context, reference string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}
