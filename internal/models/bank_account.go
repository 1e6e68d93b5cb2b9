package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount is a worker's payout destination.
type BankAccount struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	BankCode      string         `gorm:"size:20;not null" json:"bank_code"`
	AccountNumber string         `gorm:"size:32;not null" json:"account_number"`
	HolderName    string         `gorm:"size:128;not null" json:"holder_name"`
	IsDefault     bool           `gorm:"default:false" json:"is_default"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
