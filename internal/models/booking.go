package models

import (
	"time"

	"shiftly/internal/domain"

	"gorm.io/gorm"
)

// Booking is a worker's engagement on a business job. The ledger engine
// consumes it in two places: marking it complete creates the escrow hold, and
// the compliance counter folds its date range into worked days.
type Booking struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BusinessID  uint           `gorm:"not null;index" json:"business_id"`
	WorkerID    uint           `gorm:"not null;index" json:"worker_id"`
	Title       string         `gorm:"size:128" json:"title"`
	RateCents   int64          `gorm:"not null" json:"rate_cents"` // total job payment
	StartDate   time.Time      `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	Status      string         `gorm:"size:20;not null;index" json:"status"`
	AcceptedAt  *time.Time     `json:"accepted_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Business User `gorm:"foreignKey:BusinessID" json:"-"`
	Worker   User `gorm:"foreignKey:WorkerID" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsCompleted() bool { return b.Status == domain.BookingStatusCompleted }
