package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentTransaction is a single business wallet funding attempt. The wallet
// is credited only when the processor confirms the payment.
type PaymentTransaction struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	BusinessID        uint           `gorm:"not null;index" json:"business_id"`
	WalletID          uint           `gorm:"not null;index" json:"wallet_id"`
	AmountCents       int64          `gorm:"not null" json:"amount_cents"`
	FeeCents          int64          `gorm:"not null;default:0" json:"fee_cents"`
	Status            string         `gorm:"size:20;not null;index" json:"status"` // pending, success, failed, expired
	ExternalID        string         `gorm:"size:64;uniqueIndex;not null" json:"external_id"`
	ProviderPaymentID string         `gorm:"size:128" json:"provider_payment_id"`
	FailureReason     string         `gorm:"size:255" json:"failure_reason,omitempty"`
	PaidAt            *time.Time     `json:"paid_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Business User `gorm:"foreignKey:BusinessID" json:"-"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
