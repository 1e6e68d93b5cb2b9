package models

import (
	"fmt"
	"time"

	"shiftly/internal/domain"

	"gorm.io/gorm"
)

// HoldRecord is the escrow for one completed booking: the job amount sits in
// the worker's pending balance until the review window passes without dispute.
// Transitions are forward-only; released and cancelled are terminal.
type HoldRecord struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BookingID     uint           `gorm:"uniqueIndex;not null" json:"booking_id"`
	WorkerID      uint           `gorm:"not null;index" json:"worker_id"`
	BusinessID    uint           `gorm:"not null;index" json:"business_id"`
	AmountCents   int64          `gorm:"not null" json:"amount_cents"`
	Status        string         `gorm:"size:20;not null;index" json:"status"`
	ReviewEndsAt  time.Time      `gorm:"index" json:"review_ends_at"`
	ReleasedAt    *time.Time     `json:"released_at"`
	DisputeReason string         `gorm:"size:255" json:"dispute_reason,omitempty"`
	DisputedBy    *uint          `json:"disputed_by,omitempty"`
	ResolvedAt    *time.Time     `json:"resolved_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (HoldRecord) TableName() string {
	return "hold_records"
}

func (h *HoldRecord) IsTerminal() bool { return domain.HoldStatusTerminal(h.Status) }

// Reference is the shared ledger reference for every entry this hold produces.
func (h *HoldRecord) Reference() string {
	return fmt.Sprintf("booking:%d", h.BookingID)
}
