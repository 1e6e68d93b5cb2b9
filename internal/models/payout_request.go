package models

import (
	"time"

	"gorm.io/gorm"
)

// PayoutRequest is a worker withdrawal. The gross amount is debited from the
// wallet when the request is created; a terminal failed or cancelled status
// refunds the gross amount in full.
type PayoutRequest struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	WorkerID         uint           `gorm:"not null;index" json:"worker_id"`
	WalletID         uint           `gorm:"not null;index" json:"wallet_id"`
	BankAccountID    uint           `gorm:"not null" json:"bank_account_id"`
	AmountCents      int64          `gorm:"not null" json:"amount_cents"` // gross, debited at request time
	FeeCents         int64          `gorm:"not null;default:0" json:"fee_cents"`
	NetCents         int64          `gorm:"not null" json:"net_cents"` // what the worker receives
	Status           string         `gorm:"size:20;not null;index" json:"status"` // pending, processing, completed, failed, cancelled
	ExternalID       string         `gorm:"size:64;uniqueIndex;not null" json:"external_id"`
	ProviderPayoutID string         `gorm:"size:128" json:"provider_payout_id"`
	FailureReason    string         `gorm:"size:255" json:"failure_reason,omitempty"`
	RequestedAt      time.Time      `json:"requested_at"`
	ProcessedAt      *time.Time     `json:"processed_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	FailedAt         *time.Time     `json:"failed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Worker      User        `gorm:"foreignKey:WorkerID" json:"-"`
	BankAccount BankAccount `gorm:"foreignKey:BankAccountID" json:"-"`
}

func (PayoutRequest) TableName() string {
	return "payout_requests"
}
