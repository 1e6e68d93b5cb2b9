package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds the current balances for one owner (a business or a worker).
// Balances are integer minor currency units and are only ever mutated through
// the ledger writer; everything else reads.
type Wallet struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	AvailableCents int64          `gorm:"not null;default:0" json:"available_cents"`
	PendingCents   int64          `gorm:"not null;default:0" json:"pending_cents"`
	Currency       string         `gorm:"size:3;default:'IDR'" json:"currency"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
