package models

import "time"

// LedgerEntry is one immutable balance delta. Entries are append-only: there
// is no update or delete path, and a wallet's balances must always equal the
// fold of its entries per bucket.
type LedgerEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WalletID       uint      `gorm:"not null;index" json:"wallet_id"`
	Bucket         string    `gorm:"size:10;not null" json:"bucket"` // available | pending
	DeltaCents     int64     `gorm:"not null" json:"delta_cents"`
	ResultingCents int64     `gorm:"not null" json:"resulting_cents"` // bucket balance after this entry
	Kind           string    `gorm:"size:10;not null;index" json:"kind"`
	Reference      string    `gorm:"size:128;not null;index" json:"reference"` // payment/payout/booking reference
	CreatedAt      time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
