// Package ledgertest provides an in-memory ledger.Writer for service tests.
// It mirrors the gorm implementation's semantics: requests are all-or-nothing,
// guards are status compare-and-swaps, and every applied operation appends an
// immutable entry whose resulting balance matches the wallet bucket.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"shiftly/internal/domain"
	"shiftly/internal/ledger"
	"shiftly/internal/models"
)

type Writer struct {
	mu       sync.Mutex
	wallets  map[uint]*models.Wallet
	seeds    map[uint]models.Wallet     // balances at seed time
	statuses map[string]map[uint]string // table -> id -> status
	Entries  []models.LedgerEntry
	Created  []interface{}
	nextID   uint
}

func New() *Writer {
	return &Writer{
		wallets:  make(map[uint]*models.Wallet),
		seeds:    make(map[uint]models.Wallet),
		statuses: make(map[string]map[uint]string),
		nextID:   1000,
	}
}

// SeedWallet registers a wallet the fake will serve. The balances at seed
// time count as the wallet's opening position for Reconciled.
func (f *Writer) SeedWallet(w models.Wallet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := w
	f.wallets[w.ID] = &cp
	f.seeds[w.ID] = w
}

// SetStatus registers the current status of a guarded row.
func (f *Writer) SetStatus(table string, id uint, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setStatusLocked(table, id, status)
}

func (f *Writer) setStatusLocked(table string, id uint, status string) {
	if f.statuses[table] == nil {
		f.statuses[table] = make(map[uint]string)
	}
	f.statuses[table][id] = status
}

// Status returns the recorded status of a guarded row.
func (f *Writer) Status(table string, id uint) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[table][id]
}

// Balance returns the wallet's (available, pending) balances.
func (f *Writer) Balance(walletID uint) (int64, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletID]
	if !ok {
		return 0, 0
	}
	return w.AvailableCents, w.PendingCents
}

// EntriesFor returns the entries applied against one wallet, oldest first.
func (f *Writer) EntriesFor(walletID uint) []models.LedgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range f.Entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out
}

// Reconciled reports whether the wallet's balances equal its opening position
// plus the fold of its entries per bucket.
func (f *Writer) Reconciled(walletID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletID]
	if !ok {
		return false
	}
	available := f.seeds[walletID].AvailableCents
	pending := f.seeds[walletID].PendingCents
	for _, e := range f.Entries {
		if e.WalletID != walletID {
			continue
		}
		switch e.Bucket {
		case domain.BucketAvailable:
			available += e.DeltaCents
		case domain.BucketPending:
			pending += e.DeltaCents
		}
	}
	return w.AvailableCents == available && w.PendingCents == pending
}

func (f *Writer) Apply(ctx context.Context, req ledger.Request) ([]models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if g := req.Guard; g != nil {
		current, ok := f.statuses[g.Table][g.ID]
		if !ok || !contains(g.From, current) {
			return nil, domain.ErrAlreadyApplied
		}
	}

	// Validate everything before mutating so a failed request leaves no trace.
	staged := make(map[uint]*models.Wallet, len(req.Ops))
	for _, op := range req.Ops {
		w, ok := f.wallets[op.WalletID]
		if !ok {
			return nil, domain.ErrWalletNotFound
		}
		if !w.IsActive {
			return nil, domain.ErrWalletInactive
		}
		if staged[op.WalletID] == nil {
			cp := *w
			staged[op.WalletID] = &cp
		}
	}
	var entries []models.LedgerEntry
	for _, op := range req.Ops {
		w := staged[op.WalletID]
		var bal *int64
		switch op.Bucket {
		case domain.BucketAvailable:
			bal = &w.AvailableCents
		case domain.BucketPending:
			bal = &w.PendingCents
		default:
			return nil, fmt.Errorf("ledgertest: unknown bucket %q", op.Bucket)
		}
		next := *bal + op.DeltaCents
		if next < 0 {
			return nil, domain.ErrInsufficientFunds
		}
		*bal = next
		entries = append(entries, models.LedgerEntry{
			WalletID:       op.WalletID,
			Bucket:         op.Bucket,
			DeltaCents:     op.DeltaCents,
			ResultingCents: next,
			Kind:           op.Kind,
			Reference:      op.Reference,
		})
	}

	// Commit.
	if g := req.Guard; g != nil {
		f.setStatusLocked(g.Table, g.ID, g.To)
	}
	if req.Create != nil {
		f.create(req.Create)
	}
	for id, w := range staged {
		f.wallets[id] = w
	}
	for i := range entries {
		f.nextID++
		entries[i].ID = f.nextID
		f.Entries = append(f.Entries, entries[i])
	}
	return entries, nil
}

func (f *Writer) create(record interface{}) {
	f.nextID++
	switch r := record.(type) {
	case *models.PayoutRequest:
		r.ID = f.nextID
		f.setStatusLocked("payout_requests", r.ID, r.Status)
	case *models.HoldRecord:
		r.ID = f.nextID
		f.setStatusLocked("hold_records", r.ID, r.Status)
	case *models.PaymentTransaction:
		r.ID = f.nextID
		f.setStatusLocked("payment_transactions", r.ID, r.Status)
	}
	f.Created = append(f.Created, record)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
