package service

import (
	"context"
	"errors"

	"shiftly/internal/domain"
	"shiftly/internal/ledger"
	"shiftly/internal/models"

	"gorm.io/gorm"
)

// LedgerEntryStore reads the append-only entry log.
type LedgerEntryStore interface {
	ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, error)
	ListByReference(ctx context.Context, reference string) ([]models.LedgerEntry, error)
}

// Reconciler checks a wallet's stored balances against the fold of its
// entries.
type Reconciler interface {
	Reconcile(ctx context.Context, walletID uint) (*ledger.Report, error)
}

// WalletService is the read side of the wallet: balances, entry history and
// reconciliation. All writes go through the ledger writer.
type WalletService struct {
	wallets    WalletStore
	entries    LedgerEntryStore
	reconciler Reconciler
}

func NewWalletService(wallets WalletStore, entries LedgerEntryStore, reconciler Reconciler) *WalletService {
	return &WalletService{wallets: wallets, entries: entries, reconciler: reconciler}
}

func (s *WalletService) Balance(ctx context.Context, userID uint) (*models.Wallet, error) {
	return s.wallets.GetOrCreate(ctx, userID)
}

func (s *WalletService) Entries(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.entries.ListByWallet(ctx, w.ID, limit, offset)
}

func (s *WalletService) Reconcile(ctx context.Context, walletID uint) (*ledger.Report, error) {
	return s.reconciler.Reconcile(ctx, walletID)
}
