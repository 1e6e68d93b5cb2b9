package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"shiftly/internal/domain"
	"shiftly/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operation is one balance delta against one wallet bucket.
type Operation struct {
	WalletID   uint
	Bucket     string // domain.BucketAvailable | domain.BucketPending
	DeltaCents int64
	Kind       string
	Reference  string
}

// Guard is a status compare-and-swap executed in the same transaction as the
// balance moves. A guard that matches zero rows aborts the whole request with
// domain.ErrAlreadyApplied: some earlier delivery of the same event won the
// transition, so nothing may be re-applied.
type Guard struct {
	Table string
	ID    uint
	From  []string
	To    string
	Set   map[string]interface{} // extra columns written alongside status
}

// Request bundles everything one state transition needs: an optional status
// guard, an optional record to insert, and the balance operations. The whole
// request commits or rolls back as a unit.
type Request struct {
	Guard  *Guard
	Create interface{}
	Ops    []Operation
}

// Writer is the only path through which a wallet balance may change.
type Writer interface {
	Apply(ctx context.Context, req Request) ([]models.LedgerEntry, error)
}

// Ledger implements Writer on gorm. Wallet rows are the serialization point:
// each request locks its wallets FOR UPDATE in ascending id order, checks
// funds per bucket, updates balances and appends one immutable entry per
// operation.
type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Ledger {
	return &Ledger{db: db, log: log}
}

func (l *Ledger) Apply(ctx context.Context, req Request) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if g := req.Guard; g != nil {
			set := map[string]interface{}{"status": g.To}
			for k, v := range g.Set {
				set[k] = v
			}
			res := tx.Table(g.Table).Where("id = ? AND status IN ?", g.ID, g.From).Updates(set)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrAlreadyApplied
			}
		}
		if req.Create != nil {
			if err := tx.Create(req.Create).Error; err != nil {
				return err
			}
		}
		wallets, err := lockWallets(tx, req.Ops)
		if err != nil {
			return err
		}
		for _, op := range req.Ops {
			w := wallets[op.WalletID]
			bal, err := bucketOf(w, op.Bucket)
			if err != nil {
				return err
			}
			next := *bal + op.DeltaCents
			if next < 0 {
				return domain.ErrInsufficientFunds
			}
			*bal = next
			entry := models.LedgerEntry{
				WalletID:       op.WalletID,
				Bucket:         op.Bucket,
				DeltaCents:     op.DeltaCents,
				ResultingCents: next,
				Kind:           op.Kind,
				Reference:      op.Reference,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		for _, w := range wallets {
			err := tx.Model(&models.Wallet{}).Where("id = ?", w.ID).
				Updates(map[string]interface{}{
					"available_cents": w.AvailableCents,
					"pending_cents":   w.PendingCents,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		l.log.Info("ledger entry applied",
			zap.Uint("wallet_id", e.WalletID),
			zap.String("bucket", e.Bucket),
			zap.Int64("delta_cents", e.DeltaCents),
			zap.String("kind", e.Kind),
			zap.String("reference", e.Reference),
		)
	}
	return entries, nil
}

// lockWallets loads every wallet the operations touch FOR UPDATE, in
// ascending id order so concurrent requests touching the same wallets cannot
// deadlock.
func lockWallets(tx *gorm.DB, ops []Operation) (map[uint]*models.Wallet, error) {
	ids := make([]uint, 0, len(ops))
	seen := make(map[uint]bool, len(ops))
	for _, op := range ops {
		if !seen[op.WalletID] {
			seen[op.WalletID] = true
			ids = append(ids, op.WalletID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	wallets := make(map[uint]*models.Wallet, len(ids))
	for _, id := range ids {
		var w models.Wallet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrWalletNotFound
			}
			return nil, err
		}
		if !w.IsActive {
			return nil, domain.ErrWalletInactive
		}
		wallets[id] = &w
	}
	return wallets, nil
}

func bucketOf(w *models.Wallet, bucket string) (*int64, error) {
	switch bucket {
	case domain.BucketAvailable:
		return &w.AvailableCents, nil
	case domain.BucketPending:
		return &w.PendingCents, nil
	default:
		return nil, fmt.Errorf("ledger: unknown bucket %q", bucket)
	}
}

// Report is the result of reconciling one wallet against its entries.
type Report struct {
	WalletID        uint  `json:"wallet_id"`
	AvailableCents  int64 `json:"available_cents"`
	PendingCents    int64 `json:"pending_cents"`
	LedgerAvailable int64 `json:"ledger_available_cents"`
	LedgerPending   int64 `json:"ledger_pending_cents"`
	Balanced        bool  `json:"balanced"`
}

// Reconcile recomputes a wallet's balances from the fold of its entries and
// compares them to the stored row. Any mismatch means an invariant was broken.
func (l *Ledger) Reconcile(ctx context.Context, walletID uint) (*Report, error) {
	var w models.Wallet
	if err := l.db.WithContext(ctx).First(&w, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	type sum struct {
		Bucket string
		Total  int64
	}
	var sums []sum
	err := l.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Select("bucket, COALESCE(SUM(delta_cents), 0) AS total").
		Where("wallet_id = ?", walletID).
		Group("bucket").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	report := &Report{
		WalletID:       w.ID,
		AvailableCents: w.AvailableCents,
		PendingCents:   w.PendingCents,
	}
	for _, s := range sums {
		switch s.Bucket {
		case domain.BucketAvailable:
			report.LedgerAvailable = s.Total
		case domain.BucketPending:
			report.LedgerPending = s.Total
		}
	}
	report.Balanced = report.AvailableCents == report.LedgerAvailable &&
		report.PendingCents == report.LedgerPending
	if !report.Balanced {
		l.log.Error("wallet out of balance with ledger",
			zap.Uint("wallet_id", w.ID),
			zap.Int64("available_cents", report.AvailableCents),
			zap.Int64("ledger_available_cents", report.LedgerAvailable),
			zap.Int64("pending_cents", report.PendingCents),
			zap.Int64("ledger_pending_cents", report.LedgerPending),
		)
	}
	return report, nil
}
