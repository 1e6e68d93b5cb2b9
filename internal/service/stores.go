package service

import (
	"context"
	"time"

	"shiftly/internal/models"
)

// Store interfaces consumed by the services. The gorm repositories in
// internal/repository satisfy them; tests substitute fakes.

type WalletStore interface {
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.PaymentTransaction) error
	GetByID(ctx context.Context, id uint) (*models.PaymentTransaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.PaymentTransaction, error)
	SetProviderPaymentID(ctx context.Context, id uint, providerID string) error
	ListByBusiness(ctx context.Context, businessID uint, limit, offset int) ([]models.PaymentTransaction, error)
}

type PayoutStore interface {
	GetByID(ctx context.Context, id uint) (*models.PayoutRequest, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.PayoutRequest, error)
	SetProviderPayoutID(ctx context.Context, id uint, providerID string) error
	ListByWorker(ctx context.Context, workerID uint, limit, offset int) ([]models.PayoutRequest, error)
	CountChargeableSince(ctx context.Context, workerID uint, since time.Time) (int64, error)
}

type HoldStore interface {
	GetByID(ctx context.Context, id uint) (*models.HoldRecord, error)
	GetByBookingID(ctx context.Context, bookingID uint) (*models.HoldRecord, error)
	ListDueForRelease(ctx context.Context, now time.Time, limit int) ([]models.HoldRecord, error)
	ListDueForClose(ctx context.Context, before time.Time, limit int) ([]models.HoldRecord, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	UpdateStatusIf(ctx context.Context, id uint, from []string, to string, set map[string]interface{}) (bool, error)
	ListOverlapping(ctx context.Context, workerID, businessID uint, from, to time.Time, statuses []string) ([]models.Booking, error)
}

type BankAccountStore interface {
	Create(ctx context.Context, a *models.BankAccount) error
	GetByID(ctx context.Context, id uint) (*models.BankAccount, error)
	ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
